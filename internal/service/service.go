// Package service orchestrates a maintenance run: privilege gate, task
// selection, sequential execution and the final summary.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/winsweep/winsweep/internal/task"
)

// Prompter picks the subset of catalog entries to run. The interactive
// implementation lives in internal/ui; silent mode uses Defaults.
type Prompter interface {
	Select(entries []task.Entry) ([]task.Entry, error)
}

// Defaults is the non-interactive Prompter: every default-checked entry,
// in catalog order.
type Defaults struct{}

func (Defaults) Select(entries []task.Entry) ([]task.Entry, error) {
	out := make([]task.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Default {
			out = append(out, e)
		}
	}
	return out, nil
}

// Gate is the mandatory precondition check run before anything else.
type Gate func(ctx context.Context) error

// Service wires the catalog to the terminal collaborators.
type Service struct {
	gate     Gate
	catalog  []task.Entry
	prompter Prompter
	runner   *task.Runner
	out      io.Writer
	logPath  string
}

func New(gate Gate, catalog []task.Entry, prompter Prompter, progress task.Progress, out io.Writer, logPath string) *Service {
	return &Service{
		gate:     gate,
		catalog:  catalog,
		prompter: prompter,
		runner:   task.NewRunner(progress, out),
		out:      out,
		logPath:  logPath,
	}
}

// Run executes the whole flow. The returned error is nil even when tasks
// failed; only a gate failure or a selection error comes back, and the
// caller turns that into exit status 1.
func (s *Service) Run(ctx context.Context) error {
	if err := s.gate(ctx); err != nil {
		fmt.Fprintln(s.out, err.Error())
		slog.ErrorContext(ctx, fmt.Sprintf("privilege gate failed: %v", err))
		return err
	}
	slog.InfoContext(ctx, "privilege gate passed")

	selected, err := s.prompter.Select(s.catalog)
	if err != nil {
		return fmt.Errorf("selecting tasks: %w", err)
	}
	if len(selected) == 0 {
		fmt.Fprintln(s.out, "No tasks selected, nothing to do.")
		return nil
	}

	// strictly sequential: later tasks mutate the same filesystem the
	// earlier ones touch
	failed := 0
	for _, entry := range selected {
		outcome := s.runner.Run(ctx, entry)
		if !outcome.OK {
			failed++
		}
	}

	fmt.Fprintln(s.out)
	if failed == 0 {
		fmt.Fprintf(s.out, "Maintenance finished, %d task(s) completed.\n", len(selected))
	} else {
		fmt.Fprintf(s.out, "Maintenance finished, %d of %d task(s) failed.\n", failed, len(selected))
	}
	fmt.Fprintf(s.out, "Log: %s\n", s.logPath)
	slog.InfoContext(ctx, fmt.Sprintf("run finished, %d of %d task(s) failed", failed, len(selected)))
	return nil
}
