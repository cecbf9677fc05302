// Package ui renders progress and prompts on the terminal. It is the only
// package touching the spinner, color and prompt libraries; everything
// else talks to it through the small interfaces in task and service.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/winsweep/winsweep/internal/task"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// Spinner is a task.Progress showing a spinner while a task runs and a
// colored check or cross once it finished.
type Spinner struct {
	out  io.Writer
	spin *spinner.Spinner
}

func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

func (s *Spinner) Start(title string) {
	s.spin = spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithWriter(s.out),
		spinner.WithSuffix(" "+title),
	)
	s.spin.Start()
}

func (s *Spinner) Success(title string) {
	s.stop()
	fmt.Fprintf(s.out, "%s %s\n", okMark, title)
}

func (s *Spinner) Fail(title string) {
	s.stop()
	fmt.Fprintf(s.out, "%s %s\n", failMark, title)
}

func (s *Spinner) stop() {
	if s.spin != nil {
		s.spin.Stop()
		s.spin = nil
	}
}

// Plain is a task.Progress without escape codes, for logs piped to a file
// and for tests.
type Plain struct {
	Out io.Writer
}

func (p Plain) Start(title string)   { fmt.Fprintf(p.Out, "... %s\n", title) }
func (p Plain) Success(title string) { fmt.Fprintf(p.Out, "ok  %s\n", title) }
func (p Plain) Fail(title string)    { fmt.Fprintf(p.Out, "FAIL %s\n", title) }

// AskTasks presents a checkbox list of catalog entries with the default
// ones pre-checked and returns the chosen subset in catalog order.
func AskTasks(entries []task.Entry) ([]task.Entry, error) {
	options := make([]string, 0, len(entries))
	var defaults []string
	byTitle := make(map[string]task.Entry, len(entries))
	for _, e := range entries {
		options = append(options, e.Title)
		byTitle[e.Title] = e
		if e.Default {
			defaults = append(defaults, e.Title)
		}
	}

	var picked []string
	prompt := &survey.MultiSelect{
		Message:  "Select maintenance tasks to run:",
		Options:  options,
		Default:  defaults,
		PageSize: len(options),
	}
	if err := survey.AskOne(prompt, &picked); err != nil {
		return nil, err
	}

	chosen := make(map[string]bool, len(picked))
	for _, title := range picked {
		chosen[title] = true
	}

	// survey returns selection order, the orchestrator needs catalog order
	out := make([]task.Entry, 0, len(picked))
	for _, e := range entries {
		if chosen[e.Title] {
			out = append(out, e)
		}
	}
	return out, nil
}
