package audit

// ChecklistItem is one best-practice entry. Do=false marks an
// anti-pattern to avoid rather than a practice to adopt.
type ChecklistItem struct {
	Text string
	Do   bool
}

// ChecklistCategory groups related checklist items.
type ChecklistCategory struct {
	Name  string
	Items []ChecklistItem
}

// Checklist returns the static security best-practice checklist the audit
// demo walks through.
func Checklist() []ChecklistCategory {
	return []ChecklistCategory{
		{
			Name: "Authentication and authorization",
			Items: []ChecklistItem{
				{Text: "Hash passwords with a salted adaptive function (bcrypt, argon2)", Do: true},
				{Text: "Offer multi-factor authentication", Do: true},
				{Text: "Keep access token lifetimes short", Do: true},
				{Text: "Check permissions on every request", Do: true},
				{Text: "Hardcode credentials in source", Do: false},
				{Text: "Use MD5 or SHA-1 for passwords", Do: false},
			},
		},
		{
			Name: "Input validation",
			Items: []ChecklistItem{
				{Text: "Validate every piece of user input", Do: true},
				{Text: "Use parametrized queries", Do: true},
				{Text: "Escape HTML on output", Do: true},
				{Text: "Rate-limit sensitive endpoints", Do: true},
				{Text: "Trust client-side validation", Do: false},
			},
		},
		{
			Name: "Cryptography",
			Items: []ChecklistItem{
				{Text: "Encrypt sensitive data at rest", Do: true},
				{Text: "Use TLS for all traffic", Do: true},
				{Text: "Generate keys from a CSPRNG", Do: true},
				{Text: "Invent your own cryptography", Do: false},
				{Text: "Store keys next to the data they protect", Do: false},
			},
		},
		{
			Name: "Logging and monitoring",
			Items: []ChecklistItem{
				{Text: "Log security-relevant events", Do: true},
				{Text: "Alert on repeated login failures", Do: true},
				{Text: "Restrict log file permissions", Do: true},
				{Text: "Write secrets or full tokens into logs", Do: false},
			},
		},
		{
			Name: "Data protection",
			Items: []ChecklistItem{
				{Text: "Collect only the data you need", Do: true},
				{Text: "Provide export and deletion for personal data", Do: true},
				{Text: "Record a legal basis for each processing purpose", Do: true},
				{Text: "Retain personal data indefinitely", Do: false},
			},
		},
		{
			Name: "Configuration and deployment",
			Items: []ChecklistItem{
				{Text: "Keep secrets in environment variables or a vault", Do: true},
				{Text: "Keep dependencies patched", Do: true},
				{Text: "Take regular tested backups", Do: true},
				{Text: "Ship default credentials or default configs", Do: false},
			},
		},
	}
}
