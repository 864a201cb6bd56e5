// Package logger is the process-wide structured logger.
//
// Call sites pass a message followed by key/value pairs:
//
//	logger.Info("catalog reloaded", "products", n, "version", v)
//	logger.Error("failed to load interactions", err)
//
// A bare error is logged under the "error" field.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	setup(os.Stderr, "production")
}

// Init configures the logger for the given environment. Development gets
// human-readable console output at debug level, anything else gets JSON at info.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	setup(os.Stderr, env)
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer, env string) {
	mu.Lock()
	defer mu.Unlock()
	setup(w, env)
}

func setup(w io.Writer, env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.MessageFieldName = "message"

	level := zerolog.InfoLevel
	out := w
	if isDevelopment(env) {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func isDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "development", "dev", "local":
		return true
	default:
		return false
	}
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug(msg string, args ...any) {
	emit(current().Debug(), msg, args)
}

func Info(msg string, args ...any) {
	emit(current().Info(), msg, args)
}

func Warn(msg string, args ...any) {
	emit(current().Warn(), msg, args)
}

func Error(msg string, args ...any) {
	emit(current().Error(), msg, args)
}

// Fatal logs and exits the process.
func Fatal(msg string, args ...any) {
	emit(current().Fatal(), msg, args)
}

func emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	ev.Fields(fields(args)).Msg(msg)
}

// fields turns a loose argument list into structured fields.
func fields(args []any) map[string]any {
	out := make(map[string]any, len(args)/2+1)
	var extra []any

	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case error:
			out["error"] = v.Error()
		case string:
			if i+1 < len(args) {
				out[v] = normalize(args[i+1])
				i++
				continue
			}
			extra = append(extra, v)
		default:
			extra = append(extra, v)
		}
	}

	if len(extra) > 0 {
		out["args"] = strings.TrimSpace(fmt.Sprintln(extra...))
	}

	return out
}

func normalize(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}
