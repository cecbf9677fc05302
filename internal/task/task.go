// Package task wraps maintenance operations with progress reporting,
// logging and failure absorption.
package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Func is one unit of maintenance work. The returned string is an optional
// short result shown next to the title on success.
type Func func(ctx context.Context) (string, error)

// Entry is one catalog record: a stable key for selection, the title shown
// to the operator, whether the task is pre-checked, and the work itself.
type Entry struct {
	Key     string
	Title   string
	Default bool
	Run     Func
}

// Outcome is the record of one executed task.
type Outcome struct {
	Title  string
	OK     bool
	Detail string
	Err    error
}

// Progress receives start/success/failure notifications for a task.
// Implementations render spinners or colored lines, the runner does not
// care which.
type Progress interface {
	Start(title string)
	Success(title string)
	Fail(title string)
}

// Runner executes entries one at a time. Failures never escape Run: they
// are reported, logged as ERROR and folded into the Outcome.
type Runner struct {
	progress Progress
	out      io.Writer
}

func NewRunner(progress Progress, out io.Writer) *Runner {
	return &Runner{
		progress: progress,
		out:      out,
	}
}

func (r *Runner) Run(ctx context.Context, e Entry) Outcome {
	r.progress.Start(e.Title)

	detail, err := e.Run(ctx)
	if err != nil {
		r.progress.Fail(e.Title)
		fmt.Fprintln(r.out, indent(err.Error(), "    "))
		slog.ErrorContext(ctx, fmt.Sprintf("%s failed: %s", e.Title, flatten(err.Error())))
		return Outcome{Title: e.Title, OK: false, Err: err}
	}

	title := e.Title
	if detail != "" {
		title += ": " + detail
	}
	r.progress.Success(title)
	slog.InfoContext(ctx, fmt.Sprintf("%s succeeded", e.Title))
	return Outcome{Title: e.Title, OK: true, Detail: detail}
}

// indent prefixes every line of a possibly multi-line message, keeping
// tool output readable under the failed task line.
func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + strings.TrimRight(line, "\r")
	}
	return strings.Join(lines, "\n")
}

// flatten folds a multi-line message into the single-line log format.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " | ")
	s = strings.ReplaceAll(s, "\n", " | ")
	return strings.TrimSpace(s)
}
