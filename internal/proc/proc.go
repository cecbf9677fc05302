// Package proc invokes external commands with captured output.
//
// Commands are always started from an argument vector, never through a
// shell, so arguments survive whitespace and metacharacters untouched.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError reports a command that ran and exited nonzero. It carries the
// captured stderr so callers can surface the tool's own complaint.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Name, e.Code, msg)
}

// Invoker runs external commands. The single implementation is Exec;
// tests substitute fakes.
type Invoker interface {
	// Invoke runs name with args and waits for it to exit. Exactly one of
	// the result or the error is meaningful: exit 0 yields the result,
	// a nonzero exit yields an *ExitError (with the partial result for
	// callers that want the output anyway) and a spawn problem yields the
	// underlying error unchanged.
	Invoke(ctx context.Context, name string, args ...string) (Result, error)

	// Installed reports whether name resolves on the search path.
	Installed(name string) bool
}

// Exec is the os/exec backed Invoker.
type Exec struct{}

var _ Invoker = Exec{}

func (Exec) Invoke(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, err
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		// executable missing, permission denied and friends: pass through
		return Result{}, err
	}
	slog.DebugContext(ctx, "command started", "name", name, "args", strings.Join(args, " "))

	// Drain both pipes concurrently. A child writing enough to fill one
	// pipe while we read the other would otherwise deadlock.
	var outBuf, errBuf bytes.Buffer
	g := &errgroup.Group{}
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})
	copyErr := g.Wait()
	waitErr := cmd.Wait()

	res := Result{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}
	slog.DebugContext(ctx, "command finished",
		"name", name,
		"exit", res.ExitCode,
		"took", time.Since(started).Round(time.Millisecond).String(),
	)

	var exitErr *exec.ExitError
	switch {
	case errors.As(waitErr, &exitErr):
		return res, &ExitError{Name: name, Code: res.ExitCode, Stderr: res.Stderr}
	case waitErr != nil:
		return res, waitErr
	case copyErr != nil:
		return res, copyErr
	}
	return res, nil
}

func (Exec) Installed(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
