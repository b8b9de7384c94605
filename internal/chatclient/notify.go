package chatclient

import "go.uber.org/zap"

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows transient notifications to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// LogNotifier writes notifications to a zap logger. Useful when there is no terminal.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		n.Logger.Error(message)
	case LevelWarning:
		n.Logger.Warn(message)
	default:
		n.Logger.Info(message, zap.Stringer("level", level))
	}
}
