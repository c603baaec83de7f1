package logging

import (
	"io"
	log "log/slog"
	"time"

	"github.com/lmittmann/tint"
)

var levels = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// Level maps a level name to slog, falling back to info.
func Level(name string) log.Level {
	if l, ok := levels[name]; ok {
		return l
	}
	return log.LevelInfo
}

func New(w io.Writer, level string) *log.Logger {
	return log.New(tint.NewHandler(w, &tint.Options{
		Level:      Level(level),
		TimeFormat: time.TimeOnly,
	}))
}
