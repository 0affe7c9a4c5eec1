package logger

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init initializes the logger with the specified level
func Init(level string) error {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	return nil
}

// SetFormat switches between the "text" and "json" formatters
func SetFormat(format string) error {
	switch format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// SetOutput redirects log output
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Writer returns a writer that logs each line at info level
func Writer() *io.PipeWriter {
	return log.WriterLevel(logrus.InfoLevel)
}

// Debug logs a debug message
func Debug(msg string, fields ...map[string]interface{}) {
	entry(fields).Debug(msg)
}

// Info logs an info message
func Info(msg string, fields ...map[string]interface{}) {
	entry(fields).Info(msg)
}

// Warn logs a warning message
func Warn(msg string, fields ...map[string]interface{}) {
	entry(fields).Warn(msg)
}

// Error logs an error message
func Error(msg string, err error, fields ...map[string]interface{}) {
	entry(fields).WithError(err).Error(msg)
}

func entry(fields []map[string]interface{}) *logrus.Entry {
	if len(fields) > 0 && fields[0] != nil {
		return log.WithFields(fields[0])
	}
	return logrus.NewEntry(log)
}
