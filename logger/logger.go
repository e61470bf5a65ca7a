package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/remiges-tech/logharbour/logharbour"
)

// Logger is an interface that represents a logger.
type Logger interface {
	Log(message string) error
}

// LogHarbour adapts a *logharbour.Logger to Logger for components that only
// need to record a message.
type LogHarbour struct {
	*logharbour.Logger
}

func (lh *LogHarbour) Log(message string) error {
	lh.LogActivity(message, nil)
	return nil
}

var priorities = map[string]logharbour.LogPriority{
	"debug2": logharbour.Debug2,
	"debug1": logharbour.Debug1,
	"debug0": logharbour.Debug0,
	"info":   logharbour.Info,
	"warn":   logharbour.Warn,
	"err":    logharbour.Err,
	"crit":   logharbour.Crit,
	"sec":    logharbour.Sec,
}

// ParsePriority maps a level name such as "info" or "debug1" to its logharbour priority.
func ParsePriority(level string) (logharbour.LogPriority, error) {
	p, ok := priorities[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q", level)
	}
	return p, nil
}

// New creates a logharbour logger for appName writing to w. Records below
// level are dropped. An unknown level falls back to info.
func New(appName, level string, w io.Writer) *logharbour.Logger {
	priority, err := ParsePriority(level)
	if err != nil {
		priority = logharbour.Info
	}
	lctx := logharbour.NewLoggerContext(priority)
	return logharbour.NewLogger(lctx, appName, logharbour.NewFallbackWriter(w, w))
}

// LoadLogger creates a new logger. By default, it creates a LogHarbour logger.
func LoadLogger(appName string, w io.Writer) Logger {
	return &LogHarbour{New(appName, "info", w)}
}
