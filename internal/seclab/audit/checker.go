// Package audit implements a lightweight static security check over a
// project tree: file permission review, hardcoded-secret scanning and a
// go.mod dependency pass, collected into a severity-ranked report.
package audit

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Finding is one issue discovered during an audit run, with a suggested
// remediation.
type Finding struct {
	Severity  Severity  `json:"severity"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Fix       string    `json:"fix"`
	File      string    `json:"file,omitempty"`
	Line      int       `json:"line,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Checker accumulates findings across the individual checks. The zero
// value is ready to use; Now lets tests pin finding timestamps.
type Checker struct {
	findings []Finding

	Now func() time.Time
}

// File extensions worth scanning for secrets.
var scannableExt = map[string]bool{
	".go":   true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
	".env":  true,
	".sh":   true,
}

// Assignments of secret-looking names to non-empty literals. The name list
// mirrors what leaked credentials actually get called.
var secretPattern = regexp.MustCompile(
	`(?i)(password|passwd|secret|api_key|apikey|token|private_key|access_key)\s*[:=]\s*["'][^"']{4,}["']`)

// Values that are clearly placeholders, not leaks.
var placeholderValue = regexp.MustCompile(
	`(?i)(changeme|example|placeholder|your[-_]|xxx+|<[^>]+>|\$\{)`)

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Checker) add(f Finding) {
	f.Timestamp = c.now()
	c.findings = append(c.findings, f)
}

// Findings returns a copy of everything recorded so far, most severe
// first. Ties keep discovery order.
func (c *Checker) Findings() []Finding {
	out := make([]Finding, len(c.findings))
	copy(out, c.findings)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}

// CheckFilePermissions flags files readable or writable more widely than
// they need to be. Anything that looks like a secrets file must not be
// readable by group or others at all.
func (c *Checker) CheckFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("check permissions: %s is a directory", path)
	}

	mode := info.Mode().Perm()
	name := filepath.Base(path)
	clean := true

	if mode&0o002 != 0 {
		c.add(Finding{
			Severity: SeverityHigh,
			Category: "file_permissions",
			Message:  fmt.Sprintf("%s is world-writable (%04o)", name, mode),
			Fix:      "chmod o-w " + path,
			File:     path,
		})
		clean = false
	} else if mode&0o020 != 0 {
		c.add(Finding{
			Severity: SeverityMedium,
			Category: "file_permissions",
			Message:  fmt.Sprintf("%s is group-writable (%04o)", name, mode),
			Fix:      "chmod g-w " + path,
			File:     path,
		})
		clean = false
	}

	if isSecretsFile(name) && mode&0o044 != 0 {
		c.add(Finding{
			Severity: SeverityHigh,
			Category: "file_permissions",
			Message:  fmt.Sprintf("secrets file %s is readable by others (%04o)", name, mode),
			Fix:      "chmod 600 " + path,
			File:     path,
		})
		clean = false
	}

	if clean {
		c.add(Finding{
			Severity: SeverityInfo,
			Category: "file_permissions",
			Message:  fmt.Sprintf("%s permissions look reasonable (%04o)", name, mode),
			Fix:      "none required",
			File:     path,
		})
	}
	return nil
}

func isSecretsFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, ".env") {
		return true
	}
	for _, marker := range []string{"secret", "credential", "private", ".pem", ".key"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ScanHardcodedSecrets reads one file and flags assignments that bind a
// secret-looking name to a literal value. Placeholder values are skipped.
func (c *Checker) ScanHardcodedSecrets(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	found := 0
	lineNo := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		match := secretPattern.FindString(line)
		if match == "" || placeholderValue.MatchString(match) {
			continue
		}
		found++
		name, _, _ := strings.Cut(match, "=")
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name = name[:i]
		}
		c.add(Finding{
			Severity: SeverityHigh,
			Category: "hardcoded_secrets",
			Message: fmt.Sprintf("possible hardcoded secret %q in %s",
				strings.TrimSpace(name), filepath.Base(path)),
			Fix:  "move the value to an environment variable or secret manager",
			File: path,
			Line: lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return found, fmt.Errorf("scan %s: %w", path, err)
	}
	return found, nil
}

// ScanDir walks a tree and runs the secret scan on every file with a
// scannable extension. Hidden directories and testdata are skipped.
func (c *Checker) ScanDir(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "testdata" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !scannableExt[filepath.Ext(path)] && !strings.HasPrefix(d.Name(), ".env") {
			return nil
		}
		n, err := c.ScanHardcodedSecrets(path)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("scan dir %s: %w", root, err)
	}
	return total, nil
}

// Module path prefixes that deserve a closer look when they appear in a
// dependency list.
var riskyModulePrefixes = []string{
	"github.com/dgrijalva/jwt-go", // unmaintained, alg-confusion history
}

// CheckDependencies parses a go.mod file and flags risky requirements:
// abandoned modules, local replace directives, and pseudo-versions that
// pin an unreviewed commit.
func (c *Checker) CheckDependencies(gomodPath string) error {
	raw, err := os.ReadFile(gomodPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", gomodPath, err)
	}

	lineNo := 0
	for _, line := range strings.Split(string(raw), "\n") {
		lineNo++
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "replace ") && strings.Contains(trimmed, "=>") {
			target := strings.TrimSpace(strings.SplitN(trimmed, "=>", 2)[1])
			if strings.HasPrefix(target, ".") || strings.HasPrefix(target, "/") {
				c.add(Finding{
					Severity: SeverityMedium,
					Category: "dependencies",
					Message:  "replace directive points at a local path: " + target,
					Fix:      "remove local replace directives before release",
					File:     gomodPath,
					Line:     lineNo,
				})
			}
			continue
		}

		for _, prefix := range riskyModulePrefixes {
			if strings.HasPrefix(trimmed, prefix+" ") || trimmed == prefix {
				c.add(Finding{
					Severity: SeverityHigh,
					Category: "dependencies",
					Message:  "known-risky dependency: " + prefix,
					Fix:      "migrate to a maintained fork",
					File:     gomodPath,
					Line:     lineNo,
				})
			}
		}

		// v0.0.0-20060102150405-abcdef123456 style pseudo-versions.
		if pseudoVersion.MatchString(trimmed) && !strings.HasPrefix(trimmed, "//") {
			c.add(Finding{
				Severity: SeverityLow,
				Category: "dependencies",
				Message:  "pseudo-version pins an untagged commit: " + firstField(trimmed),
				Fix:      "prefer tagged releases where available",
				File:     gomodPath,
				Line:     lineNo,
			})
		}
	}
	return nil
}

var pseudoVersion = regexp.MustCompile(`v\d+\.\d+\.\d+-\d{14}-[0-9a-f]{12}`)

func firstField(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return line
	}
	return fields[0]
}

// Report renders the findings as a plain-text summary: counts per
// severity, then each finding with its remediation.
func (c *Checker) Report() string {
	findings := c.Findings()

	counts := map[Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "security audit: %d finding(s)\n", len(findings))
	for sev := SeverityCritical; sev >= SeverityInfo; sev-- {
		if counts[sev] > 0 {
			fmt.Fprintf(&b, "  %-8s %d\n", sev.String(), counts[sev])
		}
	}

	for i, f := range findings {
		fmt.Fprintf(&b, "\n%d. [%s] %s\n   %s\n   fix: %s\n", i+1, f.Severity, f.Category, f.Message, f.Fix)
		if f.File != "" {
			if f.Line > 0 {
				fmt.Fprintf(&b, "   at: %s:%d\n", f.File, f.Line)
			} else {
				fmt.Fprintf(&b, "   at: %s\n", f.File)
			}
		}
	}
	return b.String()
}
