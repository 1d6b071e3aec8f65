package demo

import (
	"context"
	"io"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/app"
	"github.com/secbyexample/seclab/internal/seclab/mfa"
)

// RunMFA walks through TOTP enrollment, playing both the server and the
// authenticator app.
func RunMFA(_ context.Context, w io.Writer, a *app.Application) error {
	title(w, "Multi-factor authentication")

	now := time.Now()

	section(w, "Enrollment")
	enr, err := a.MFA.Enroll("alice@example.com")
	if err != nil {
		return err
	}
	ok(w, "shared secret: %s", truncate(enr.Secret, 16))
	ok(w, "provisioning URL: %s", truncate(enr.URL, 60))
	note(w, "the URL is what the QR code encodes; the authenticator app stores the secret")

	section(w, "Activation")
	code, err := mfa.CodeAt(enr.Secret, now)
	if err != nil {
		return err
	}
	backup, err := a.MFA.Activate(enr.Account, code, now)
	if err != nil {
		return err
	}
	ok(w, "code %s accepted; MFA is now active", code)
	ok(w, "%d single-use backup codes issued, e.g. %s", len(backup), truncate(backup[0], 12))

	section(w, "Verification")
	if err := a.MFA.Verify(enr.Account, code, now); err == nil {
		ok(w, "current code verifies")
	}
	if err := a.MFA.Verify(enr.Account, code, now.Add(5*time.Minute)); err != nil {
		fail(w, "same code five minutes later: %v", err)
		note(w, "codes rotate every 30 seconds; replay beyond the skew window fails")
	}
	if err := a.MFA.Verify(enr.Account, "000000", now); err != nil {
		fail(w, "guessed code: %v", err)
	}

	section(w, "Backup codes")
	if err := a.MFA.VerifyBackupCode(enr.Account, backup[0]); err == nil {
		ok(w, "backup code accepted once")
	}
	if err := a.MFA.VerifyBackupCode(enr.Account, backup[0]); err != nil {
		fail(w, "same backup code again: %v", err)
	}
	note(w, "%d backup codes remain", a.MFA.RemainingBackupCodes(enr.Account))

	return nil
}
