package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type slogKeyT struct{}

var slogKey slogKeyT

// ContextHandler appends slog attributes stored in a context to every
// record, so things like the run id appear on each line without threading
// a logger around.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(handler slog.Handler) ContextHandler {
	return ContextHandler{
		Handler: handler,
	}
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if a, ok := ctx.Value(slogKey).([]slog.Attr); ok {
		r.AddAttrs(a...)
	}

	return h.Handler.Handle(ctx, r)
}

func ContextAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	a, ok := ctx.Value(slogKey).([]slog.Attr)
	if !ok || a == nil {
		a = make([]slog.Attr, 0, len(attrs))
	}
	a = append(a, attrs...)
	return context.WithValue(ctx, slogKey, a)
}

// Path computes the log file location for a run started at start.
// Colons are not valid in Windows file names, so the timestamp suffix
// replaces them with dashes. Successive runs never collide.
func Path(dir string, start time.Time) string {
	stamp := strings.ReplaceAll(start.UTC().Format("2006-01-02T15:04:05"), ":", "-")
	return filepath.Join(dir, "winsweep-"+stamp+".log")
}

// Open opens the run log in append mode, creating it if absent.
// The file is never truncated by this program.
func Open(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// LineHandler is a slog.Handler writing one plain text line per record:
//
//	<RFC3339 timestamp> [<LEVEL>] <message> key=value ...
//
// Writes are best effort: a failing writer warns once on stderr and all
// records are dropped silently after that. A log problem must never fail
// the task that tried to log.
type LineHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
	warn  *sync.Once
}

func NewLineHandler(w io.Writer, level slog.Leveler) *LineHandler {
	return &LineHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		warn:  &sync.Once{},
	}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.UTC().Format(time.RFC3339))
	sb.WriteString(" [")
	sb.WriteString(levelName(r.Level))
	sb.WriteString("] ")
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&sb, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, a)
		return true
	})
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.WriteString(h.w, sb.String()); err != nil {
		h.warn.Do(func() {
			fmt.Fprintf(os.Stderr, "winsweep: can't write log entry: %v\n", err)
		})
	}
	return nil
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *LineHandler) WithGroup(string) slog.Handler {
	// groups are flattened, the log contract is a single message field
	return h
}

func writeAttr(sb *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	sb.WriteString(" ")
	sb.WriteString(a.Key)
	sb.WriteString("=")
	sb.WriteString(a.Value.String())
}

// levelName collapses slog levels to the three the log format knows.
func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	default:
		return "INFO"
	}
}

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
}

// ParseEntry parses a line produced by LineHandler back into its parts.
func ParseEntry(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	ts, rest, ok := strings.Cut(line, " ")
	if !ok {
		return Entry{}, fmt.Errorf("malformed log entry: %q", line)
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed log timestamp: %w", err)
	}
	if !strings.HasPrefix(rest, "[") {
		return Entry{}, fmt.Errorf("malformed log entry: %q", line)
	}
	level, msg, ok := strings.Cut(rest[1:], "] ")
	if !ok {
		return Entry{}, fmt.Errorf("malformed log entry: %q", line)
	}
	switch level {
	case "INFO", "WARN", "ERROR":
	default:
		return Entry{}, fmt.Errorf("unknown log level %q", level)
	}
	return Entry{Time: t, Level: level, Message: msg}, nil
}

// New builds the default logger for a run: plain text lines to w,
// debug records included when verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(NewContextHandler(NewLineHandler(w, level)))
}
