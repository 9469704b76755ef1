package recdb

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger lets callers capture recdb's diagnostic messages (currently one
// note per record checked by Database.Validate) without forcing a
// particular logging backend, mirroring the teacher's database.Logger
// interface (database/logger.go).
type Logger interface {
	Print(v ...any)
	Printf(format string, v ...any)
	Println(v ...any)
}

// StdoutLogger writes every message to stdout.
type StdoutLogger struct{}

func (StdoutLogger) Print(v ...any)                 { fmt.Print(v...) }
func (StdoutLogger) Printf(format string, v ...any) { fmt.Printf(format, v...) }
func (StdoutLogger) Println(v ...any)               { fmt.Println(v...) }

// NullLogger discards every message. It is the default.
type NullLogger struct{}

func (NullLogger) Print(v ...any)                 {}
func (NullLogger) Printf(format string, v ...any) {}
func (NullLogger) Println(v ...any)               {}

// InitSlog configures the default log/slog logger from the
// $RECDB_LOG_LEVEL environment variable, the same convention the
// teacher's util.InitSlog uses for $LOG_LEVEL (util/logutil.go).
// Supported levels: debug, info, warn, error.
func InitSlog() {
	logLevel, ok := os.LookupEnv("RECDB_LOG_LEVEL")
	if !ok {
		return
	}

	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
