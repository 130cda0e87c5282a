package todo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"todo-tracker/internal/httpx"
)

// Notifier sends best-effort lifecycle emails. Implementations never
// fail the request; the returned bool only reports whether a message
// went out.
type Notifier interface {
	TaskCreated(ctx context.Context, t Todo) bool
	TaskCompleted(ctx context.Context, t Todo) bool
	TaskReopened(ctx context.Context, t Todo) bool
	TaskUpdated(ctx context.Context, t Todo) bool
}

type createRequest struct {
	Title         string `json:"title"`
	Notes         string `json:"notes"`
	DueDate       string `json:"dueDate"`
	EmailOnCreate bool   `json:"emailOnCreate"`
}

type completeRequest struct {
	EmailOnComplete bool `json:"emailOnComplete"`
}

type updateRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type todoResponse struct {
	Todo    Todo `json:"todo"`
	Emailed bool `json:"emailed"`
}

// RegisterRoutes mounts the task CRUD endpoints.
func RegisterRoutes(r chi.Router, repo Repository, notifier Notifier) {
	r.Get("/api/todos", listTodos(repo))
	r.Post("/api/todos", createTodo(repo, notifier))
	r.Patch("/api/todos/{id}/complete", completeTodo(repo, notifier))
	r.Patch("/api/todos/{id}/reopen", reopenTodo(repo, notifier))
	r.Patch("/api/todos/{id}/notes", updateTodo(repo, notifier))
	r.Delete("/api/todos/{id}", deleteTodo(repo))
}

func listTodos(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := ParseStatus(r.URL.Query().Get("status"))
		if !ok {
			httpx.Error(w, http.StatusBadRequest, "invalid status")
			return
		}
		todos, err := repo.List(r.Context(), status)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if todos == nil {
			todos = []Todo{}
		}
		httpx.WriteJSON(w, http.StatusOK, todos)
	}
}

func createTodo(repo Repository, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			httpx.Error(w, http.StatusBadRequest, "task title is required")
			return
		}

		t, err := repo.Create(r.Context(), CreateInput{
			Title:            req.Title,
			Notes:            req.Notes,
			DueDate:          req.DueDate,
			NotifyOnComplete: req.EmailOnCreate,
		})
		if err != nil {
			writeRepoError(w, err)
			return
		}

		emailed := false
		if req.EmailOnCreate {
			emailed = notifier.TaskCreated(r.Context(), t)
		}
		httpx.WriteJSON(w, http.StatusCreated, todoResponse{Todo: t, Emailed: emailed})
	}
}

func completeTodo(repo Repository, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			httpx.Error(w, http.StatusBadRequest, "invalid id")
			return
		}

		var req completeRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		t, err := repo.SetCompleted(r.Context(), id, true)
		if err != nil {
			writeRepoError(w, err)
			return
		}

		emailed := false
		if req.EmailOnComplete || t.NotifyOnComplete {
			emailed = notifier.TaskCompleted(r.Context(), t)
		}
		httpx.WriteJSON(w, http.StatusOK, todoResponse{Todo: t, Emailed: emailed})
	}
}

func reopenTodo(repo Repository, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			httpx.Error(w, http.StatusBadRequest, "invalid id")
			return
		}

		t, err := repo.SetCompleted(r.Context(), id, false)
		if err != nil {
			writeRepoError(w, err)
			return
		}

		emailed := false
		if t.NotifyOnComplete {
			emailed = notifier.TaskReopened(r.Context(), t)
		}
		httpx.WriteJSON(w, http.StatusOK, todoResponse{Todo: t, Emailed: emailed})
	}
}

func updateTodo(repo Repository, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			httpx.Error(w, http.StatusBadRequest, "invalid id")
			return
		}

		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			httpx.Error(w, http.StatusBadRequest, "task title is required")
			return
		}

		t, err := repo.UpdateDetails(r.Context(), id, req.Title, req.Notes)
		if err != nil {
			writeRepoError(w, err)
			return
		}

		emailed := false
		if t.NotifyOnComplete {
			emailed = notifier.TaskUpdated(r.Context(), t)
		}
		httpx.WriteJSON(w, http.StatusOK, todoResponse{Todo: t, Emailed: emailed})
	}
}

func deleteTodo(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			httpx.Error(w, http.StatusBadRequest, "invalid id")
			return
		}
		if err := repo.Delete(r.Context(), id); err != nil {
			writeRepoError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type emailSetting struct {
	Email *string `json:"email"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// RegisterSettingsRoutes mounts the notification recipient endpoints.
func RegisterSettingsRoutes(r chi.Router, store SettingsStore) {
	r.Get("/api/settings/email", func(w http.ResponseWriter, r *http.Request) {
		email, err := store.EmailRecipient(r.Context())
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		var out emailSetting
		if email != "" {
			out.Email = &email
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	})

	r.Put("/api/settings/email", func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !emailShape.MatchString(email) {
			httpx.Error(w, http.StatusBadRequest, "invalid email address")
			return
		}
		if err := store.SetEmailRecipient(r.Context(), email); err != nil {
			httpx.Error(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, emailSetting{Email: &email})
	})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTitleRequired):
		httpx.Error(w, http.StatusBadRequest, "task title is required")
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "todo not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "unexpected error")
	}
}
