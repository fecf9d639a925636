package core

import (
	"bytes"
	"io"

	log "github.com/sirupsen/logrus"
)

// Logger is the logging surface used across the module, satisfied by *logrus.Logger.
type Logger interface {
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	WithFields(log.Fields) *log.Entry
	SetLevel(level log.Level)
	GetLevel() log.Level
	SetOutput(writer io.Writer)
	SetFormatter(formatter log.Formatter)
}

func NewLogger() Logger {
	return log.New()
}

// NewNullLogger discards everything, used mainly for testing.
func NewNullLogger() Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

// NewBufferLogger stores all logs in b, used mainly for testing.
func NewBufferLogger(b *bytes.Buffer) Logger {
	logger := log.New()
	logger.SetOutput(b)
	return logger
}

func IsDebugLevel(l Logger) bool {
	return l.GetLevel() >= log.DebugLevel
}
