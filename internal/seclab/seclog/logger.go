// Package seclog records security events: structured, append-only, and
// scrubbed. Passwords and full token strings never reach a sink; callers
// pass fingerprints produced by cryptox.
package seclog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/secbyexample/seclab/pkg/cryptox"
	"github.com/secbyexample/seclab/pkg/idx"
)

type EventType string

const (
	EventLoginAttempt       EventType = "login_attempt"
	EventPermissionDenied   EventType = "permission_denied"
	EventSuspiciousActivity EventType = "suspicious_activity"
	EventDataAccess         EventType = "data_access"
	EventConfigChange       EventType = "config_change"
)

// Severity levels, ordered from routine to actionable.
const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// Event is one JSON line in the security log.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"event_type"`
	Severity  string         `json:"severity"`
	Details   map[string]any `json:"details"`
}

// Logger appends events to a JSON-lines sink and mirrors them to slog so
// they also land in the operational log stream. A nil *Logger is a valid
// no-op, letting components treat security logging as optional wiring.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer // non-nil when we own the file
	log *slog.Logger
}

// New opens (creating directories as needed) an append-only event log at
// path.
func New(path string, log *slog.Logger) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("seclog: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("seclog: open log file: %w", err)
	}
	l := NewWriter(f, log)
	l.c = f
	return l, nil
}

// NewWriter wires the logger to an arbitrary sink. Used by tests and demos.
func NewWriter(w io.Writer, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{w: w, log: log}
}

func (l *Logger) Close() error {
	if l == nil || l.c == nil {
		return nil
	}
	return l.c.Close()
}

// LoginAttempt records the outcome of a login. Only the username, outcome
// and source travel to the log; the password never gets near this call.
func (l *Logger) LoginAttempt(username string, success bool, source string) {
	severity := SeverityInfo
	if !success {
		severity = SeverityWarning
	}
	l.record(EventLoginAttempt, severity, map[string]any{
		"username": username,
		"success":  success,
		"source":   source,
	})
}

// PermissionDenied records an authorization failure. The token is reduced to
// a fingerprint before it is stored.
func (l *Logger) PermissionDenied(username, resource, action, token string) {
	details := map[string]any{
		"username": username,
		"resource": resource,
		"action":   action,
	}
	if token != "" {
		details["token_fp"] = cryptox.ShortFingerprint(token)
	}
	l.record(EventPermissionDenied, SeverityWarning, details)
}

// SuspiciousActivity records anomalies like brute-force patterns.
func (l *Logger) SuspiciousActivity(description string, details map[string]any) {
	merged := map[string]any{"description": description}
	for k, v := range details {
		merged[k] = v
	}
	l.record(EventSuspiciousActivity, SeverityCritical, merged)
}

// DataAccess records reads, exports and deletions of personal data.
func (l *Logger) DataAccess(username, dataType, operation string) {
	l.record(EventDataAccess, SeverityInfo, map[string]any{
		"username":  username,
		"data_type": dataType,
		"operation": operation,
	})
}

// ConfigChange records a configuration mutation. Values are fingerprinted:
// knowing that something changed matters, the raw values often being secrets.
func (l *Logger) ConfigChange(username, item, oldValue, newValue string) {
	l.record(EventConfigChange, SeverityWarning, map[string]any{
		"username":     username,
		"config_item":  item,
		"old_value_fp": cryptox.ShortFingerprint(oldValue),
		"new_value_fp": cryptox.ShortFingerprint(newValue),
	})
}

func (l *Logger) record(typ EventType, severity string, details map[string]any) {
	if l == nil {
		return
	}

	ev := Event{
		ID:        idx.New().String(),
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Severity:  severity,
		Details:   details,
	}

	line, err := json.Marshal(ev)
	if err != nil {
		l.log.Error("seclog: marshal event", "error", err, "event_type", string(typ))
		return
	}

	l.mu.Lock()
	_, werr := l.w.Write(append(line, '\n'))
	l.mu.Unlock()
	if werr != nil {
		l.log.Error("seclog: write event", "error", werr, "event_type", string(typ))
	}

	l.log.Log(context.Background(), slogLevel(severity), "security_event",
		"event_id", ev.ID,
		"event_type", string(typ),
		"severity", severity,
	)
}

func slogLevel(severity string) slog.Level {
	switch severity {
	case SeverityCritical:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
