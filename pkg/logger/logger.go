// Package logger builds the slog loggers used across the catalogue.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	FormatJSON  = "json"
	FormatPlain = "plain"
)

// Config holds logger configuration.
type Config struct {
	Writer    io.Writer
	Format    string
	Level     slog.Level
	Timestamp bool
}

// New creates a logger. The plain format prints the "LEVEL: message
// key=value" lines the CLI shows to a person; JSON suits machines.
func New(cfg Config) *slog.Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(cfg.Writer, opts))
	}
	return slog.New(NewPlainHandler(cfg.Writer, opts, cfg.Timestamp))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a string to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// PlainHandler is a slog.Handler writing one uncoloured line per record.
type PlainHandler struct {
	opts      *slog.HandlerOptions
	mu        *sync.Mutex
	writer    io.Writer
	attrs     []slog.Attr
	groups    []string
	timestamp bool
}

// NewPlainHandler creates a plain handler.
func NewPlainHandler(w io.Writer, opts *slog.HandlerOptions, timestamp bool) *PlainHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PlainHandler{
		opts:      opts,
		mu:        &sync.Mutex{},
		writer:    w,
		timestamp: timestamp,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PlainHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes the log record.
func (h *PlainHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	if h.timestamp && !r.Time.IsZero() {
		buf = append(buf, r.Time.Format(time.DateTime)...)
		buf = append(buf, ' ')
	}
	buf = append(buf, r.Level.String()...)
	buf = append(buf, ": "...)
	buf = append(buf, r.Message...)

	prefix := strings.Join(h.groups, ".")
	if prefix != "" {
		prefix += "."
	}
	for _, a := range h.attrs {
		buf = appendAttr(buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf)
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *PlainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	prefix := strings.Join(h.groups, ".")
	if prefix != "" {
		prefix += "."
	}
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup returns a new handler with the given group.
func (h *PlainHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, prefix+a.Key+".", ga)
		}
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	value := a.Value.String()
	if strings.ContainsAny(value, " \t\"=") {
		value = `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
	}
	buf = append(buf, value...)
	return buf
}
