// Package logging provides a small leveled logger that fans records out
// to pluggable transports as JSON lines.
package logging

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel maps a config string to a Level, defaulting to info for
// anything unrecognized.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Record is one structured log entry.
type Record struct {
	Timestamp time.Time      `json:"ts"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Transport is one log destination.
type Transport interface {
	// Name identifies the transport for debugging.
	Name() string
	// Log writes a single record.
	Log(ctx context.Context, rec *Record) error
	// Flush drains any buffering.
	Flush(ctx context.Context) error
}

// Logger fans records out to its transports. All methods are safe for
// concurrent use.
type Logger struct {
	mu         sync.RWMutex
	level      Level
	transports []Transport
}

// NewLogger creates a Logger writing to the given transports.
func NewLogger(level Level, transports ...Transport) *Logger {
	return &Logger{
		level:      level,
		transports: transports,
	}
}

// SetLevel changes the minimum severity that gets logged.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// AddTransport attaches another destination.
func (l *Logger) AddTransport(t Transport) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transports = append(l.transports, t)
}

func (l *Logger) log(ctx context.Context, level Level, msg string, fields map[string]any) {
	if !l.enabled(level) {
		return
	}

	rec := &Record{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Fields:    fields,
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, t := range l.transports {
		_ = t.Log(ctx, rec)
	}
}

func (l *Logger) enabled(level Level) bool {
	order := map[Level]int{
		LevelDebug: 1,
		LevelInfo:  2,
		LevelWarn:  3,
		LevelError: 4,
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return order[level] >= order[l.level]
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, fields map[string]any) {
	l.log(ctx, LevelDebug, msg, fields)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, fields map[string]any) {
	l.log(ctx, LevelInfo, msg, fields)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, fields map[string]any) {
	l.log(ctx, LevelWarn, msg, fields)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, fields map[string]any) {
	l.log(ctx, LevelError, msg, fields)
}

// Flush flushes every transport.
func (l *Logger) Flush(ctx context.Context) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.transports {
		_ = t.Flush(ctx)
	}
}

// StdoutTransport writes records as JSON lines to stdout.
type StdoutTransport struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// NewStdoutTransport creates a StdoutTransport.
func NewStdoutTransport() *StdoutTransport {
	return &StdoutTransport{
		encoder: json.NewEncoder(os.Stdout),
	}
}

func (t *StdoutTransport) Name() string { return "stdout" }

func (t *StdoutTransport) Log(ctx context.Context, rec *Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.encoder.Encode(rec)
}

func (t *StdoutTransport) Flush(ctx context.Context) error {
	// stdout needs no explicit flush
	return nil
}

// FileTransport appends records as JSON lines to a file.
type FileTransport struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

// NewFileTransport opens (or creates) the log file at path.
func NewFileTransport(path string) (*FileTransport, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	return &FileTransport{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

func (t *FileTransport) Name() string { return "file" }

func (t *FileTransport) Log(ctx context.Context, rec *Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.encoder.Encode(rec)
}

func (t *FileTransport) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Sync()
}

// Close closes the underlying file.
func (t *FileTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}

// Default is a process-wide Logger for quick integration.
var Default = NewLogger(LevelInfo, NewStdoutTransport())

// Package-level helpers over Default.

func Debug(ctx context.Context, msg string, fields map[string]any) {
	Default.Debug(ctx, msg, fields)
}

func Info(ctx context.Context, msg string, fields map[string]any) {
	Default.Info(ctx, msg, fields)
}

func Warn(ctx context.Context, msg string, fields map[string]any) {
	Default.Warn(ctx, msg, fields)
}

func Error(ctx context.Context, msg string, fields map[string]any) {
	Default.Error(ctx, msg, fields)
}

func Flush(ctx context.Context) {
	Default.Flush(ctx)
}
