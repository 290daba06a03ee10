// Package elog is a thin structured-event logging seam for the engine.
// The engine's hot paths (load/store/commit) never format or allocate
// for logging unless a real Logger is installed — Discard is the
// default. This is operational visibility into rollback reasons,
// quiescence, and clock rollover, not line-by-line debug tracing.
package elog

import "github.com/sirupsen/logrus"

// Fields carries structured event attributes through to the backend.
type Fields = logrus.Fields

// Logger receives named engine events with structured fields.
type Logger interface {
	Event(name string, fields Fields)
}

type discardLogger struct{}

func (discardLogger) Event(string, Fields) {}

// Discard is the no-op Logger every Engine uses unless overridden.
var Discard Logger = discardLogger{}

type logrusLogger struct {
	l *logrus.Logger
}

// NewLogrus adapts a *logrus.Logger to Logger.
func NewLogrus(l *logrus.Logger) Logger {
	return logrusLogger{l: l}
}

func (g logrusLogger) Event(name string, fields Fields) {
	g.l.WithFields(fields).Debug(name)
}
