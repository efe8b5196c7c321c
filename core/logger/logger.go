package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Entry is one line of the session event log.
type Entry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`
	Name            string `json:"event"`
	Payload         Event  `json:"payload"`
}

// LogRecorder is a callback that stores entries in an external
// datastore.
type LogRecorder func(le *Entry) error

// Logger captures interpreter activity for later inspection.
type Logger struct {
	Record LogRecorder
}

// NewJsonLinesLogRecorder creates a Logger that exports entries in
// newline delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *Entry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// Discard creates a Logger that drops every entry.
func Discard() *Logger {
	return &Logger{
		Record: func(le *Entry) error {
			return nil
		},
	}
}

func (l *Logger) recordEvent(sessionID string, event Event) error {
	le := &Entry{
		TimestampMicros: time.Now().UnixMicro(),
		SessionID:       sessionID,
		Name:            event.eventName(),
		Payload:         event,
	}

	return l.Record(le)
}

// NewSession creates a logger with an attached random session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// Sessionless creates a logger without a session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ""}
}

// SessionLogger logs events with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

func (l *SessionLogger) Record(event Event) error {
	return l.recordEvent(l.sessionID, event)
}
