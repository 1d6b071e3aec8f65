// Package demo contains the console walkthroughs. Each Run function
// exercises the real components against a live Application and narrates
// what happens, including the failure paths a slide deck would gloss over.
package demo

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/secbyexample/seclab/internal/seclab/app"
	"github.com/secbyexample/seclab/pkg/slogx"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0EA5E9")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Runner is one named walkthrough.
type Runner func(ctx context.Context, w io.Writer, a *app.Application) error

var runners = map[string]Runner{
	"hashing":  RunHashing,
	"validate": RunValidate,
	"auth":     RunAuth,
	"seclog":   RunSeclog,
	"consent":  RunConsent,
	"audit":    RunAudit,
	"mfa":      RunMFA,
}

// Names lists the available walkthroughs in a stable order.
func Names() []string {
	names := make([]string, 0, len(runners))
	for name := range runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a walkthrough by name.
func Lookup(name string) (Runner, bool) {
	r, ok := runners[name]
	return r, ok
}

// RunAll runs every walkthrough in order, stopping at the first error.
// Each walkthrough gets a module-scoped contextual logger.
func RunAll(ctx context.Context, w io.Writer, a *app.Application) error {
	for _, name := range Names() {
		if err := runners[name](slogx.WithModule(ctx, name), w, a); err != nil {
			return fmt.Errorf("demo %s: %w", name, err)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func title(w io.Writer, text string) {
	fmt.Fprintln(w, titleStyle.Render(text))
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat("=", len(text))))
}

func section(w io.Writer, text string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render(text))
}

func ok(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render("  + "+fmt.Sprintf(format, args...)))
}

func fail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, failStyle.Render("  - "+fmt.Sprintf(format, args...)))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render("  ! "+fmt.Sprintf(format, args...)))
}

func note(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, dimStyle.Render("    "+fmt.Sprintf(format, args...)))
}

// truncate keeps narrated tokens short enough to read.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
