package demo

import (
	"context"
	"io"

	"github.com/secbyexample/seclab/internal/seclab/app"
	"github.com/secbyexample/seclab/internal/seclab/validate"
)

// RunValidate walks through input validation and sanitization with the
// classic attack payloads.
func RunValidate(_ context.Context, w io.Writer, _ *app.Application) error {
	title(w, "Input validation")

	section(w, "Emails")
	for _, email := range []string{
		"usuario@ejemplo.com",
		"test.email+tag@domain.co.uk",
		"invalid-email",
		"test..test@domain.com",
		"@domain.com",
	} {
		if normalized, err := validate.Email(email); err == nil {
			ok(w, "%s -> %s", email, normalized)
		} else {
			fail(w, "%s -> %v", email, err)
		}
	}

	section(w, "Ages")
	for _, age := range []string{"25", "abc", "-5", "200", "25.5"} {
		if parsed, err := validate.Age(age); err == nil {
			ok(w, "%s -> %d", age, parsed)
		} else {
			fail(w, "%s -> %v", age, err)
		}
	}

	section(w, "URLs")
	for _, link := range []string{
		"https://example.com/docs",
		"javascript:alert('Malicious!')",
		"ftp://example.com/file",
	} {
		if _, err := validate.URL(link); err == nil {
			ok(w, "%s", link)
		} else {
			fail(w, "%s -> %v", link, err)
		}
	}

	section(w, "Sanitization")
	payload := "<script>alert('XSS')</script>"
	ok(w, "HTML-escaped: %s", validate.SanitizeHTML(payload))

	injection := "'; DROP TABLE users; --"
	ok(w, "SQL literal: %s", validate.SanitizeSQLLiteral(injection))
	warn(w, "escaping is the fallback; the store itself only runs parametrized queries")

	return nil
}
