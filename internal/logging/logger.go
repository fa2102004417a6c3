package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/hdldep/internal/config"
)

// FileName is the log file inside .hdldep/logs.
const FileName = "hdldep.log"

// Level tags a log line.
type Level string

const (
	LevelInfo Level = "INFO"
	LevelWarn Level = "WARN"
)

type sink struct {
	mu   sync.Mutex
	file *os.File
}

// Logger appends timestamped lines to .hdldep/logs/hdldep.log so a
// resolution can be inspected after the viewer has closed. Loggers returned
// by Named share the file of their parent.
type Logger struct {
	sink *sink
	name string
}

// New creates (or reuses) the log file for the given work area.
func New(workArea string) (*Logger, error) {
	logDir := filepath.Join(workArea, config.WorkDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{sink: &sink{file: f}}, nil
}

// Named returns a logger whose lines are prefixed with name, e.g.
// "depparser" or "project blinky".
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{sink: l.sink, name: strings.TrimSpace(name)}
}

// Close releases the file handle. Closing any logger closes the shared file.
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}

// Printf writes an INFO line. It satisfies the resolver's trace sink.
func (l *Logger) Printf(format string, args ...any) {
	l.write(LevelInfo, format, args...)
}

// Warnf writes a WARN line.
func (l *Logger) Warnf(format string, args ...any) {
	l.write(LevelWarn, format, args...)
}

func (l *Logger) write(level Level, format string, args ...any) {
	if l == nil || l.sink == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if l.name != "" {
		line = l.name + ": " + line
	}
	timestamp := time.Now().Format(time.RFC3339)
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return
	}
	fmt.Fprintf(l.sink.file, "[%s] %s %s\n", timestamp, level, line)
}
