// Package schedule drives the periodic report emails. Three fixed cron
// triggers fire shortly before midnight in the configured timezone; the
// monthly trigger re-checks "last day of month" at fire time because a
// cron field cannot express it directly.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"todo-tracker/internal/report"
)

var firings = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduler_firings_total",
		Help: "Scheduled report firings by period and outcome",
	},
	[]string{"period", "outcome"},
)

func init() {
	prometheus.MustRegister(firings)
}

// Scheduler owns the cron instance and the report jobs.
type Scheduler struct {
	cron    *cron.Cron
	builder *report.Builder
	mailer  report.Mailer
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
}

func New(builder *report.Builder, mailer report.Mailer, loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		builder: builder,
		mailer:  mailer,
		logger:  logger,
		loc:     loc,
		now:     time.Now,
	}
}

// Register installs the three triggers. Daily fires every night, weekly
// on Sunday (last day of the ISO week), monthly on the last few calendar
// days with a fire-time guard.
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc("55 23 * * *", func() {
		s.runJob(report.PeriodDaily)
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("55 23 * * 0", func() {
		s.runJob(report.PeriodWeekly)
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("55 23 28-31 * *", func() {
		if !s.monthlyDue() {
			return
		}
		s.runJob(report.PeriodMonthly)
	}); err != nil {
		return err
	}
	return nil
}

// monthlyDue re-checks "last day of month" at fire time, in the
// scheduler's own location so the day boundary agrees with the trigger
// that fired it.
func (s *Scheduler) monthlyDue() bool {
	return report.LastDayOfMonth(s.now().In(s.loc))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler_started", slog.String("timezone", s.loc.String()))
}

// Stop halts the cron loop and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries exposes the registered trigger count, mostly for tests.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// runJob builds and mails one report. Failures are logged and never
// affect later firings; rebuilding and resending is idempotent with
// respect to stored state.
func (s *Scheduler) runJob(period report.Period) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rep, err := s.builder.Build(ctx, period, s.now().UTC())
	if err != nil {
		s.logger.Error("scheduled_report_failed",
			slog.String("period", string(period)),
			slog.String("error", err.Error()),
		)
		firings.WithLabelValues(string(period), "error").Inc()
		return
	}

	emailed := s.mailer.Report(ctx, rep)
	s.logger.Info("scheduled_report_processed",
		slog.String("period", string(period)),
		slog.Int("completed", rep.CompletedCount),
		slog.Bool("emailed", emailed),
	)
	firings.WithLabelValues(string(period), "ok").Inc()
}
