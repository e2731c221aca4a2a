package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type LogFields map[string]interface{}

// Logger writes one structured line per event. Action is a stable snake_case
// key (e.g. "ride_published") that log queries can filter on.
type Logger interface {
	WithFields(fields LogFields) Logger

	Info(action, message string)
	Debug(action, message string)
	Error(action string, err error)
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a JSON logger for the named service writing to stdout.
func New(serviceName, level string) Logger {
	return NewWithOutput(serviceName, level, os.Stdout)
}

func NewWithOutput(serviceName, level string, out io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return &logrusLogger{
		entry: l.WithFields(logrus.Fields{
			"service":  serviceName,
			"hostname": host,
		}),
	}
}

// Nop discards everything. Used by tests and CLI commands that have no
// interest in service logs.
func Nop() Logger {
	return NewWithOutput("nop", "panic", io.Discard)
}

func (l *logrusLogger) WithFields(fields LogFields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) Info(action, message string) {
	l.entry.WithField("action", action).Info(message)
}

func (l *logrusLogger) Debug(action, message string) {
	l.entry.WithField("action", action).Debug(message)
}

func (l *logrusLogger) Error(action string, err error) {
	if err == nil {
		return
	}
	l.entry.WithFields(logrus.Fields{
		"action": action,
		"error":  err.Error(),
	}).Error(err.Error())
}
