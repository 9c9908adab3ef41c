package logger_adapter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"krisha-parser-service/internal/core/port"
)

const fileTimeFormat = "2006-01-02 15:04:05"

// fileSink - общий для всех производных логгеров файл
type fileSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
}

// FileLoggerAdapter пишет журнал запуска строками "время - сообщение".
// Файл только дописывается.
type FileLoggerAdapter struct {
	sink     *fileSink
	fields   port.Fields
	minLevel slog.Level
}

// NewFileLoggerAdapter создает в dir файл log_YYYY-MM-DD_HH-mm-ss.txt
func NewFileLoggerAdapter(dir string, minLevel slog.Leveler) (*FileLoggerAdapter, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("file logger: failed to create log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("log_%s.txt", time.Now().Format("2006-01-02_15-04-05")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("file logger: failed to open %s: %w", path, err)
	}

	return newFileLogger(f, f, time.Now, minLevel), path, nil
}

func newFileLogger(w io.Writer, closer io.Closer, now func() time.Time, minLevel slog.Leveler) *FileLoggerAdapter {
	level := slog.LevelInfo
	if minLevel != nil {
		level = minLevel.Level()
	}
	return &FileLoggerAdapter{
		sink:     &fileSink{w: w, closer: closer, now: now},
		fields:   make(port.Fields),
		minLevel: level,
	}
}

func (a *FileLoggerAdapter) write(level slog.Level, msg string, fields port.Fields, err error) {
	if level < a.minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(a.sink.now().Format(fileTimeFormat))
	b.WriteString(" - ")
	b.WriteString(strings.ToUpper(levelTag(level)))
	b.WriteByte(' ')
	b.WriteString(msg)

	merged := make(port.Fields, len(a.fields)+len(fields))
	for k, v := range a.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, merged[k])
	}
	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	b.WriteByte('\n')

	a.sink.mu.Lock()
	defer a.sink.mu.Unlock()
	_, _ = io.WriteString(a.sink.w, b.String())
}

func (a *FileLoggerAdapter) Info(msg string, fields port.Fields) {
	a.write(slog.LevelInfo, msg, fields, nil)
}

func (a *FileLoggerAdapter) Warn(msg string, fields port.Fields) {
	a.write(slog.LevelWarn, msg, fields, nil)
}

func (a *FileLoggerAdapter) Error(msg string, err error, fields port.Fields) {
	a.write(slog.LevelError, msg, fields, err)
}

func (a *FileLoggerAdapter) Debug(msg string, fields port.Fields) {
	a.write(slog.LevelDebug, msg, fields, nil)
}

func (a *FileLoggerAdapter) WithFields(fields port.Fields) port.LoggerPort {
	merged := make(port.Fields, len(a.fields)+len(fields))
	for k, v := range a.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &FileLoggerAdapter{sink: a.sink, fields: merged, minLevel: a.minLevel}
}

func (a *FileLoggerAdapter) Close() error {
	a.sink.mu.Lock()
	defer a.sink.mu.Unlock()
	if a.sink.closer == nil {
		return nil
	}
	return a.sink.closer.Close()
}
