package compat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oriumgames/compat/version"
	"go.uber.org/zap"
)

// LogSink receives component log records on behalf of a plugin.
type LogSink interface {
	Log(plugin string, msg any, level slog.Level)
}

// SlogSink writes records to a slog logger.
type SlogSink struct {
	Logger *slog.Logger
}

// Log writes msg to the slog logger at level, tagged with plugin.
func (s SlogSink) Log(plugin string, msg any, level slog.Level) {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Log(context.Background(), level, fmt.Sprint(msg), "plugin", plugin)
}

// ZapSink writes records to a zap logger.
type ZapSink struct {
	Logger *zap.Logger
}

// Log writes msg to the zap logger at the matching zap level.
func (s ZapSink) Log(plugin string, msg any, level slog.Level) {
	if s.Logger == nil {
		return
	}
	fields := []zap.Field{zap.String("plugin", plugin)}
	if _, ok := msg.(string); !ok {
		fields = append(fields, zap.Any("component", msg))
	}
	text := fmt.Sprint(msg)
	switch {
	case level < slog.LevelInfo:
		s.Logger.Debug(text, fields...)
	case level < slog.LevelWarn:
		s.Logger.Info(text, fields...)
	case level < slog.LevelError:
		s.Logger.Warn(text, fields...)
	default:
		s.Logger.Error(text, fields...)
	}
}

// ComponentLogger logs rich text messages for plugins. Hosts before 1.16 log
// plain text only, so messages are flattened there.
type ComponentLogger interface {
	Log(plugin string, msg any, level slog.Level)
}

var componentLoggerTable = version.Table[func(*API) (ComponentLogger, error)]{
	Capability: "component_logger",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (ComponentLogger, error)]{
		{Through: "1.15.2", Name: "plain", New: func(a *API) (ComponentLogger, error) {
			return componentLogger{sink: a.sink, plain: true}, nil
		}},
	},
	Default: version.Breakpoint[func(*API) (ComponentLogger, error)]{Name: "component", New: func(a *API) (ComponentLogger, error) {
		return componentLogger{sink: a.sink}, nil
	}},
}

// componentLogger implements ComponentLogger.
type componentLogger struct {
	sink  LogSink
	plain bool
}

// Log flattens msg to text before handing it to the wrapped sink.
func (c componentLogger) Log(plugin string, msg any, level slog.Level) {
	if c.plain {
		msg = StripColors(fmt.Sprint(msg))
	}
	c.sink.Log(plugin, msg, level)
}
