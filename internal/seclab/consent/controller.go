package consent

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/secbyexample/seclab/internal/seclab/seclog"
	"github.com/secbyexample/seclab/pkg/cryptox"
)

// Direct identifiers scrubbed during anonymization. Everything else in a
// record is treated as non-identifying and kept for aggregate use.
var directIdentifiers = map[string]bool{
	"name":    true,
	"email":   true,
	"phone":   true,
	"address": true,
}

// Record is one subject's collected personal data plus the legal basis it
// was collected under.
type Record struct {
	UserID      string            `json:"user_id"`
	Data        map[string]string `json:"data"`
	LegalBasis  string            `json:"legal_basis"`
	CollectedAt time.Time         `json:"collected_at"`
}

// ProcessingEntry is one line of the processing activity log the controller
// is obliged to keep.
type ProcessingEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	LegalBasis string    `json:"legal_basis,omitempty"`
}

// Controller demonstrates the data-subject rights over a held dataset:
// access (export), erasure (delete) and anonymization. Every processing
// step is appended to an activity log and mirrored to the security log.
type Controller struct {
	mu       sync.Mutex
	records  map[string]Record
	activity []ProcessingEntry

	Security *seclog.Logger
}

func NewController(security *seclog.Logger) *Controller {
	return &Controller{
		records:  make(map[string]Record),
		Security: security,
	}
}

// AddUserData stores personal data for a subject under a named legal basis.
func (c *Controller) AddUserData(userID string, data map[string]string, legalBasis string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make(map[string]string, len(data))
	for k, v := range data {
		copied[k] = v
	}
	c.records[userID] = Record{
		UserID:      userID,
		Data:        copied,
		LegalBasis:  legalBasis,
		CollectedAt: now,
	}
	c.logProcessing(userID, "collect", legalBasis, now)
}

// ExportUserData renders everything held about a subject as portable JSON
// (the right of access). Fails with ErrNotFound for unknown subjects.
func (c *Controller) ExportUserData(userID string, now time.Time) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[userID]
	if !ok {
		return nil, ErrNotFound
	}

	c.logProcessing(userID, "export", rec.LegalBasis, now)
	c.Security.DataAccess(userID, "personal_data", "export")

	return json.MarshalIndent(rec, "", "  ")
}

// DeleteUserData removes a subject's data entirely (the right to erasure).
// The processing log keeps a trace that a deletion happened, not the data.
func (c *Controller) DeleteUserData(userID, reason string, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[userID]; !ok {
		return ErrNotFound
	}

	delete(c.records, userID)
	c.logProcessing(userID, "delete:"+reason, "", now)
	c.Security.DataAccess(userID, "personal_data", "delete")
	return nil
}

// AnonymizeUserData strips direct identifiers and re-keys the record under
// a derived pseudonym, returning the new id. The original key is gone, so
// the remaining data can no longer be traced back to the subject.
func (c *Controller) AnonymizeUserData(userID string, now time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[userID]
	if !ok {
		return "", ErrNotFound
	}

	anonID := "anon_" + cryptox.ShortFingerprint(userID)
	scrubbed := make(map[string]string, len(rec.Data))
	for k, v := range rec.Data {
		if directIdentifiers[k] {
			continue
		}
		scrubbed[k] = v
	}

	delete(c.records, userID)
	c.records[anonID] = Record{
		UserID:      anonID,
		Data:        scrubbed,
		LegalBasis:  rec.LegalBasis,
		CollectedAt: rec.CollectedAt,
	}

	c.logProcessing(userID, "anonymize", rec.LegalBasis, now)
	return anonID, nil
}

// ProcessingLog returns a copy of the activity log, oldest first.
func (c *Controller) ProcessingLog() []ProcessingEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ProcessingEntry, len(c.activity))
	copy(out, c.activity)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// logProcessing must be called with the mutex held.
func (c *Controller) logProcessing(userID, action, legalBasis string, now time.Time) {
	c.activity = append(c.activity, ProcessingEntry{
		Timestamp:  now,
		UserID:     userID,
		Action:     action,
		LegalBasis: legalBasis,
	})
}
