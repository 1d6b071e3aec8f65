package demo

import (
	"context"
	"io"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/app"
)

// RunSeclog walks through security event logging and brute-force
// detection.
func RunSeclog(ctx context.Context, w io.Writer, a *app.Application) error {
	title(w, "Security logging")

	now := time.Now()

	section(w, "Events worth recording")
	a.Security.LoginAttempt("mallory", false, "203.0.113.7")
	a.Security.PermissionDenied("bob", "admin_panel", "read", "")
	a.Security.DataAccess("alice", "user_records", "export")
	a.Security.ConfigChange("alice", "access_ttl", "15m", "5m")
	ok(w, "events appended to %s as JSON lines", a.Cfg.SecurityLogFile)
	note(w, "tokens and secrets are fingerprinted before logging, never written whole")

	section(w, "Brute-force detection")
	if _, err := a.Sessions.Register(ctx, "victim", "Target-Pass-1!", ""); err != nil {
		return err
	}
	const source = "198.51.100.23"
	for i := 1; i <= a.Cfg.MaxLoginFailures+1; i++ {
		_, err := a.Sessions.Login(ctx, "victim", "guess-"+string(rune('a'+i)), source, now)
		if err == nil {
			continue
		}
		if a.Detector.RecordFailure("victim", source) {
			warn(w, "attempt %d: flagged as suspicious activity", i)
		} else {
			fail(w, "attempt %d: failed login recorded", i)
		}
	}

	if _, flagged := a.Detector.Flagged("victim", source); flagged {
		ok(w, "detector holds the flag until a successful login clears it")
	}

	if _, err := a.Sessions.Login(ctx, "victim", "Target-Pass-1!", source, now); err == nil {
		a.Detector.RecordSuccess("victim", source)
		ok(w, "real owner logged in; flag cleared")
	}

	return nil
}
