package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"

	"todo-tracker/internal/httpx"
)

// Mailer sends a rendered report to the configured recipient,
// best-effort.
type Mailer interface {
	Report(ctx context.Context, r Report) bool
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// RegisterRoutes mounts the report endpoints.
func RegisterRoutes(r chi.Router, builder *Builder, mailer Mailer) {
	r.Get("/api/reports/{period}", getReport(builder))
	r.Post("/api/reports/{period}/email", emailReport(builder, mailer))
	r.Get("/api/reports/{period}/download", downloadReport(builder))
}

func getReport(builder *Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, ref, ok := requestParams(w, r, r.URL.Query().Get("startDate"))
		if !ok {
			return
		}
		rep, err := builder.Build(r.Context(), period, ref)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "report generation failed")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, rep)
	}
}

func emailReport(builder *Builder, mailer Mailer) http.HandlerFunc {
	type emailBody struct {
		StartDate string `json:"startDate"`
	}
	type emailed struct {
		Emailed bool   `json:"emailed"`
		Report  Report `json:"report"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var body emailBody
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		period, ref, ok := requestParams(w, r, body.StartDate)
		if !ok {
			return
		}
		rep, err := builder.Build(r.Context(), period, ref)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "report generation failed")
			return
		}
		sent := mailer.Report(r.Context(), rep)
		httpx.WriteJSON(w, http.StatusOK, emailed{Emailed: sent, Report: rep})
	}
}

func downloadReport(builder *Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, ref, ok := requestParams(w, r, r.URL.Query().Get("startDate"))
		if !ok {
			return
		}
		rep, err := builder.Build(r.Context(), period, ref)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "report generation failed")
			return
		}

		format := "txt"
		if r.URL.Query().Get("format") == "csv" {
			format = "csv"
		}
		filename := fmt.Sprintf("todo-%s-report-%s.%s", period, time.Now().UTC().Format("2006-01-02"), format)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if format == "csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			_, _ = w.Write([]byte(rep.CSV()))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(rep.Text()))
	}
}

// requestParams validates the period path segment and the optional
// reference date. A missing startDate anchors the report to now.
func requestParams(w http.ResponseWriter, r *http.Request, startDate string) (Period, time.Time, bool) {
	period, err := ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid report period")
		return "", time.Time{}, false
	}

	ref := time.Now().UTC()
	if startDate != "" {
		if !datePattern.MatchString(startDate) {
			httpx.Error(w, http.StatusBadRequest, "invalid startDate, use YYYY-MM-DD")
			return "", time.Time{}, false
		}
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid startDate, use YYYY-MM-DD")
			return "", time.Time{}, false
		}
		ref = parsed
	}
	return period, ref, true
}
