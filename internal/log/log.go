// Package log provides structured logging for fmark.
// It wraps a tint slog handler with a category field and is only enabled
// through Init, which the root command calls for --debug or FMARK_DEBUG.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatIndex   Category = "index"   // Parsing and mutating the bookmark index
	CatRender  Category = "render"  // Plain text rendering
	CatStore   Category = "store"   // Reading and writing the bookmark file
	CatConfig  Category = "config"  // Configuration loading/saving
	CatMenu    Category = "menu"    // Menu program interactions
	CatWatcher Category = "watcher" // File watcher events
	CatCache   Category = "cache"   // cache operations
	CatBrowser Category = "browser" // Browser launches
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	handler  *slog.Logger
	level    *slog.LevelVar
	enabled  bool
	minLevel Level
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the global logger writing to the file at path.
// Returns a cleanup function to close the log file.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		defaultLogger, initErr = newFileLogger(path)
	})
	if initErr != nil {
		return nil, initErr
	}
	// Check if logger was initialized (handles case where once.Do already ran)
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	return func() {
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}, nil
}

// InitWriter replaces the global logger with one writing to w.
// Colors are used only when w is a terminal.
func InitWriter(w io.Writer) {
	defaultLogger = newLogger(w, nil)
}

func newFileLogger(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, err
	}
	return newLogger(f, f), nil
}

func newLogger(w io.Writer, f *os.File) *Logger {
	noColor := true
	if file, ok := w.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		noColor = false
		w = colorable.NewColorable(file)
	}

	level := &slog.LevelVar{}
	level.Set(slog.LevelDebug)
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05",
		NoColor:    noColor,
	})

	return &Logger{
		file:     f,
		handler:  slog.New(handler),
		level:    level,
		enabled:  true,
		minLevel: LevelDebug,
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.enabled = enabled
		defaultLogger.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = level
		defaultLogger.level.Set(level.slog())
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, tint.Err(err))
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	if defaultLogger == nil || !defaultLogger.enabled {
		return
	}
	if level < defaultLogger.minLevel {
		return
	}

	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	// Handle odd field count - append orphan key with no value
	if len(fields)%2 != 0 {
		if _, isAttr := fields[len(fields)-1].(slog.Attr); !isAttr {
			fields = append(fields, "<missing>")
		}
	}
	args := append([]any{slog.String("cat", string(cat))}, fields...)
	defaultLogger.handler.Log(context.Background(), level.slog(), msg, args...)
}
