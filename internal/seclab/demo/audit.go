package demo

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/secbyexample/seclab/internal/seclab/app"
	"github.com/secbyexample/seclab/internal/seclab/audit"
)

// RunAudit walks through the static security checks against a scratch
// project tree seeded with deliberate mistakes.
func RunAudit(_ context.Context, w io.Writer, _ *app.Application) error {
	title(w, "Security audit")

	dir, err := os.MkdirTemp("", "seclab-audit-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	// A project with problems on purpose.
	leaky := filepath.Join(dir, "config.go")
	if err := os.WriteFile(leaky, []byte("package config\n\nvar apiKey = \"sk-live-4f9a8b7c6d5e\"\n"), 0o644); err != nil {
		return err
	}
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("DB_URL=postgres://localhost/app\n"), 0o666); err != nil {
		return err
	}
	_ = os.Chmod(envFile, 0o666)
	gomod := filepath.Join(dir, "go.mod")
	if err := os.WriteFile(gomod, []byte(`module example.com/app

go 1.25.0

require (
	github.com/dgrijalva/jwt-go v3.2.0+incompatible
)

replace example.com/fork => ../fork
`), 0o644); err != nil {
		return err
	}

	checker := &audit.Checker{}

	section(w, "File permissions")
	if err := checker.CheckFilePermissions(envFile); err != nil {
		return err
	}

	section(w, "Hardcoded secrets")
	n, err := checker.ScanDir(dir)
	if err != nil {
		return err
	}
	warn(w, "%d possible secret(s) in source", n)

	section(w, "Dependencies")
	if err := checker.CheckDependencies(gomod); err != nil {
		return err
	}
	warn(w, "risky requirements flagged in go.mod")

	section(w, "Report")
	report := checker.Report()
	if _, err := io.WriteString(w, report); err != nil {
		return err
	}

	section(w, "Checklist")
	for _, cat := range audit.Checklist() {
		ok(w, "%s (%d items)", cat.Name, len(cat.Items))
	}
	note(w, "run `seclab audit` against your own tree before every release")

	return nil
}
