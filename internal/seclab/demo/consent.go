package demo

import (
	"context"
	"io"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/app"
)

// RunConsent walks through consent management and the data-subject
// rights: access, erasure and anonymization.
func RunConsent(ctx context.Context, w io.Writer, a *app.Application) error {
	title(w, "Consent and personal data")

	now := time.Now()
	const subject = "subject_42"

	section(w, "Consent lifecycle")
	records, err := a.Consents.RequestConsent(ctx, subject, []string{"marketing", "analytics"}, now)
	if err != nil {
		return err
	}
	ok(w, "requested consent for %d purposes, all pending", len(records))

	if _, err := a.Consents.RecordConsent(ctx, records[0].ID, true, now); err != nil {
		return err
	}
	if _, err := a.Consents.RecordConsent(ctx, records[1].ID, false, now); err != nil {
		return err
	}
	for _, purpose := range []string{"marketing", "analytics"} {
		granted, err := a.Consents.CheckConsent(ctx, subject, purpose)
		if err != nil {
			return err
		}
		if granted {
			ok(w, "%s: granted", purpose)
		} else {
			fail(w, "%s: not granted, must not process", purpose)
		}
	}

	if err := a.Consents.WithdrawConsent(ctx, subject, "marketing", now.Add(time.Minute)); err != nil {
		return err
	}
	warn(w, "marketing consent withdrawn; processing stops from here on")

	section(w, "Data subject rights")
	a.Controller.AddUserData(subject, map[string]string{
		"name":       "Ana García",
		"email":      "ana@example.com",
		"phone":      "+34 600 000 000",
		"plan":       "premium",
		"newsletter": "weekly",
	}, "consent", now)

	export, err := a.Controller.ExportUserData(subject, now)
	if err != nil {
		return err
	}
	ok(w, "right of access: %d bytes of portable JSON", len(export))

	anonID, err := a.Controller.AnonymizeUserData(subject, now)
	if err != nil {
		return err
	}
	ok(w, "anonymized: record re-keyed to %s, direct identifiers dropped", anonID)

	if err := a.Controller.DeleteUserData(anonID, "demo cleanup", now); err != nil {
		return err
	}
	ok(w, "right to erasure: record deleted, processing log keeps only the trace")

	note(w, "%d entries in the processing activity log", len(a.Controller.ProcessingLog()))
	return nil
}
