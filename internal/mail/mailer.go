// Package mail sends best-effort notification email. Every failure is
// logged and surfaced to the caller only as a false "emailed" flag;
// task mutations never block on delivery.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"todo-tracker/internal/config"
	"todo-tracker/internal/report"
	"todo-tracker/internal/todo"
)

var mailSends = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mail_sends_total",
		Help: "Outbound mail attempts by outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(mailSends)
}

// Sender delivers one composed message. Satisfied by the SMTP client;
// tests substitute fakes.
type Sender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// RecipientSource reads the configured notification recipient. An empty
// string means none is on file.
type RecipientSource interface {
	EmailRecipient(ctx context.Context) (string, error)
}

// Mailer gates and dispatches notification email.
type Mailer struct {
	cfg        config.SMTP
	sender     Sender
	recipients RecipientSource
	logger     *slog.Logger
	now        func() time.Time
}

func NewMailer(cfg config.SMTP, sender Sender, recipients RecipientSource, logger *slog.Logger) *Mailer {
	return &Mailer{
		cfg:        cfg,
		sender:     sender,
		recipients: recipients,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// send applies the gate conditions in order: transport configured, then
// recipient on file. Only then is delivery attempted.
func (m *Mailer) send(ctx context.Context, subject, body string) bool {
	if !m.cfg.Complete() {
		m.logger.Warn("mail_skipped", slog.String("reason", "smtp not configured"))
		mailSends.WithLabelValues("skipped").Inc()
		return false
	}

	recipient, err := m.recipients.EmailRecipient(ctx)
	if err != nil {
		m.logger.Error("mail_recipient_lookup_failed", slog.String("error", err.Error()))
		mailSends.WithLabelValues("error").Inc()
		return false
	}
	if recipient == "" {
		m.logger.Warn("mail_skipped", slog.String("reason", "no recipient configured"))
		mailSends.WithLabelValues("skipped").Inc()
		return false
	}

	if err := m.sender.Send(ctx, m.cfg.From, recipient, subject, body); err != nil {
		m.logger.Error("mail_send_failed",
			slog.String("to", recipient),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		mailSends.WithLabelValues("error").Inc()
		return false
	}

	m.logger.Info("mail_sent", slog.String("to", recipient), slog.String("subject", subject))
	mailSends.WithLabelValues("sent").Inc()
	return true
}

func (m *Mailer) TaskCreated(ctx context.Context, t todo.Todo) bool {
	body := taskBody("A new task was created.", t, "Created at", t.CreatedAt.Format(time.RFC3339))
	return m.send(ctx, "Task Created: "+t.Title, body)
}

func (m *Mailer) TaskCompleted(ctx context.Context, t todo.Todo) bool {
	completed := ""
	if t.CompletedAt != nil {
		completed = t.CompletedAt.Format(time.RFC3339)
	}
	body := taskBody("A task was marked as completed.", t, "Completed at", completed)
	return m.send(ctx, "Task Completed: "+t.Title, body)
}

func (m *Mailer) TaskReopened(ctx context.Context, t todo.Todo) bool {
	body := taskBody("A task was reopened.", t, "Reopened at", m.now().Format(time.RFC3339))
	return m.send(ctx, "Task Reopened: "+t.Title, body)
}

func (m *Mailer) TaskUpdated(ctx context.Context, t todo.Todo) bool {
	body := taskBody("A task was edited.", t, "Edited at", m.now().Format(time.RFC3339))
	return m.send(ctx, "Task Updated: "+t.Title, body)
}

// Report emails the full text rendering of a completion report.
func (m *Mailer) Report(ctx context.Context, r report.Report) bool {
	subject := fmt.Sprintf("Todo %s report: %d completed", r.Period, r.CompletedCount)
	return m.send(ctx, subject, r.Text())
}

func taskBody(headline string, t todo.Todo, stampLabel, stamp string) string {
	notes, due := "", ""
	if t.Notes != nil {
		notes = *t.Notes
	}
	if t.DueDate != nil {
		due = *t.DueDate
	}
	lines := []string{
		headline,
		"",
		"Title: " + t.Title,
		"Notes: " + notes,
		"Due date: " + due,
		stampLabel + ": " + stamp,
	}
	return strings.Join(lines, "\n")
}
