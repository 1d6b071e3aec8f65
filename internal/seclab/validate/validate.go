// Package validate checks and sanitizes untrusted input before it reaches
// storage or rendering. Validation rejects bad values outright; the
// Sanitize functions transform values that will be embedded elsewhere.
package validate

import (
	"errors"
	"fmt"
	"html"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

const (
	// RFC 5321 path limit.
	MaxEmailLength = 254
	// Practical URL length limit shared by most browsers and servers.
	MaxURLLength = 2048
	// Default limit for free-text fields.
	DefaultMaxTextLength = 255

	MinAge = 0
	MaxAge = 150
)

var (
	ErrEmptyField      = errors.New("field_empty")
	ErrTooLong         = errors.New("field_too_long")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidAge      = errors.New("invalid_age")
	ErrAgeOutOfRange   = errors.New("age_out_of_range")
	ErrInvalidURL      = errors.New("invalid_url")
	ErrForbiddenScheme = errors.New("forbidden_url_scheme")
	ErrControlChars    = errors.New("control_characters")
)

// Email validates and normalizes an email address. It returns the address
// trimmed and lowercased, or an error describing why it was rejected.
func Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmptyField
	}
	if len(email) > MaxEmailLength {
		return "", fmt.Errorf("%w: max %d characters", ErrTooLong, MaxEmailLength)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	// mail.ParseAddress accepts some shapes we do not want from a form:
	// quoted local parts, missing dots in the domain, consecutive dots.
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "", ErrInvalidEmail
	}
	if strings.Contains(email, "..") {
		return "", ErrInvalidEmail
	}
	if !strings.Contains(domain, ".") {
		return "", ErrInvalidEmail
	}
	for _, r := range local {
		if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyz0123456789._%+-", r) {
			return "", ErrInvalidEmail
		}
	}

	return email, nil
}

// Age parses an age from its decimal string form and checks the range.
// Fractions and non-numeric input are rejected, not rounded.
func Age(raw string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidAge
	}
	return AgeInt(age)
}

// AgeInt checks an already-parsed age against the allowed range.
func AgeInt(age int) (int, error) {
	if age < MinAge || age > MaxAge {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrAgeOutOfRange, age, MinAge, MaxAge)
	}
	return age, nil
}

// URL validates a link supplied by a user. Only absolute http and https
// URLs with a host are accepted; javascript:, data: and friends are not
// links, they are payloads.
func URL(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", ErrEmptyField
	}
	if len(link) > MaxURLLength {
		return "", fmt.Errorf("%w: max %d characters", ErrTooLong, MaxURLLength)
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", ErrInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "javascript", "data", "vbscript":
		return "", ErrForbiddenScheme
	default:
		return "", ErrForbiddenScheme
	}
	if u.Host == "" {
		return "", ErrInvalidURL
	}

	return link, nil
}

// TextField validates a free-text form field: non-empty after trimming, at
// most maxLength runes, and free of control characters. The trimmed value
// is returned HTML-escaped so it is safe to echo into a page.
func TextField(raw string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyField
	}
	if len([]rune(text)) > maxLength {
		return "", fmt.Errorf("%w: max %d characters", ErrTooLong, maxLength)
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return "", ErrControlChars
		}
	}

	return SanitizeHTML(text), nil
}

// SanitizeHTML escapes the characters that let text break out of an HTML
// context. Escaping on output is the defense; this never rejects input.
func SanitizeHTML(text string) string {
	return html.EscapeString(text)
}

// SanitizeSQLLiteral doubles single quotes and strips common injection
// tokens from a value destined for a SQL string literal. This exists to
// show what escaping looks like; real queries take parameters instead,
// which is what the sqlite store does throughout.
func SanitizeSQLLiteral(text string) string {
	safe := strings.ReplaceAll(text, "'", "''")
	for _, tok := range []string{";", "--", "/*", "*/", "xp_", "sp_"} {
		safe = strings.ReplaceAll(safe, tok, "")
	}
	return safe
}
