package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todo-tracker/internal/todo"
)

// CompletedLister is the slice of the task store the builder needs.
type CompletedLister interface {
	CompletedInRange(ctx context.Context, start, end time.Time) ([]todo.Todo, error)
}

// Report summarizes completed tasks over one period. Derived data,
// recomputed on every request, never persisted.
type Report struct {
	Period         Period      `json:"period"`
	Start          time.Time   `json:"start"`
	End            time.Time   `json:"end"`
	GeneratedAt    time.Time   `json:"generatedAt"`
	CompletedCount int         `json:"completedCount"`
	Tasks          []todo.Todo `json:"tasks"`
}

// Builder assembles reports from the task store.
type Builder struct {
	store CompletedLister
}

func NewBuilder(store CompletedLister) *Builder {
	return &Builder{store: store}
}

// Build computes the period range around ref and collects the tasks
// completed inside it, ordered by completion time ascending.
func (b *Builder) Build(ctx context.Context, period Period, ref time.Time) (Report, error) {
	start, end := RangeFor(period, ref)
	tasks, err := b.store.CompletedInRange(ctx, start, end)
	if err != nil {
		return Report{}, fmt.Errorf("report generation failed: %w", err)
	}
	if tasks == nil {
		tasks = []todo.Todo{}
	}
	return Report{
		Period:         period,
		Start:          start,
		End:            end,
		GeneratedAt:    time.Now().UTC(),
		CompletedCount: len(tasks),
		Tasks:          tasks,
	}, nil
}

// Text renders a human-readable summary.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Todo completion report (%s)\n", r.Period)
	fmt.Fprintf(&b, "Range: %s to %s\n", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	fmt.Fprintf(&b, "Completed count: %d\n\n", r.CompletedCount)

	if len(r.Tasks) == 0 {
		b.WriteString("No tasks were completed in this period.")
		return b.String()
	}

	for i, t := range r.Tasks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Title)
		if t.Notes != nil && *t.Notes != "" {
			fmt.Fprintf(&b, "   Notes: %s\n", *t.Notes)
		}
		if t.DueDate != nil && *t.DueDate != "" {
			fmt.Fprintf(&b, "   Due: %s\n", *t.DueDate)
		}
		completed := "n/a"
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(&b, "   Completed: %s\n", completed)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CSV renders a metadata preamble, a blank line, a header row, and one
// row per task. Text fields are always quoted with internal quotes
// doubled so the output round-trips through any standard CSV parser.
func (r Report) CSV() string {
	lines := []string{
		"Period," + string(r.Period),
		"Range Start," + r.Start.Format(time.RFC3339),
		"Range End," + r.End.Format(time.RFC3339),
		fmt.Sprintf("Completed Count,%d", r.CompletedCount),
		"",
		"Task ID,Title,Notes,Due Date,Completed At,Created At",
	}

	for _, t := range r.Tasks {
		completed := ""
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Format(time.RFC3339)
		}
		row := []string{
			fmt.Sprintf("%d", t.ID),
			csvQuote(t.Title),
			csvQuote(deref(t.Notes)),
			csvQuote(deref(t.DueDate)),
			csvQuote(completed),
			csvQuote(t.CreatedAt.Format(time.RFC3339)),
		}
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
