// Package logger provides the process-wide logger of the library.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Environment variables configuring the logger.
const (
	EnvLoggingLevel  = "LATEBINDING_LOGGING_LEVEL"
	EnvLoggingFormat = "LATEBINDING_LOGGING_FORMAT"
)

const (
	defaultLevel = logrus.WarnLevel

	FormatText = "text"
	FormatJSON = "json"
)

var (
	once sync.Once
	lg   *logrus.Logger
)

// Logger returns the logger shared by all bindings. It is configured from
// the environment on first use; an invalid setting falls back to the default
// and is reported once through the logger itself.
func Logger() *logrus.Logger {
	once.Do(func() {
		var err error
		if lg, err = New(); err != nil {
			lg = newLogger(defaultLevel, &logrus.TextFormatter{})
			lg.WithError(err).Warn("invalid logging configuration, using defaults")
		}
	})

	return lg
}

// New creates a logger configured from LATEBINDING_LOGGING_LEVEL (default
// "warning") and LATEBINDING_LOGGING_FORMAT ("text" or "json", default "text").
func New() (*logrus.Logger, error) {
	level := defaultLevel
	if levelStr := os.Getenv(EnvLoggingLevel); levelStr != "" {
		var err error
		if level, err = logrus.ParseLevel(levelStr); err != nil {
			return nil, err
		}
	}

	var formatter logrus.Formatter
	switch format := strings.ToLower(os.Getenv(EnvLoggingFormat)); format {
	case "", FormatText:
		formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000 MST",
		}
	case FormatJSON:
		formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown logging format '%s'", format)
	}

	return newLogger(level, formatter), nil
}

func newLogger(level logrus.Level, formatter logrus.Formatter) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	l.SetFormatter(formatter)

	return l
}
