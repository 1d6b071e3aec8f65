package domain

import "time"

// Consent record statuses. A record starts pending, is decided exactly once
// (granted or denied), and a granted record may later be withdrawn.
const (
	ConsentPending   = "pending"
	ConsentGranted   = "granted"
	ConsentDenied    = "denied"
	ConsentWithdrawn = "withdrawn"
)

// Consent is one user's decision about one processing purpose. Subject IDs
// are free-form strings; consent subjects are not required to be registered
// auth accounts.
type Consent struct {
	ID          string // ULID, sorts by request time
	UserID      string
	Purpose     string
	Status      string
	RequestedAt time.Time
	DecidedAt   *time.Time
	WithdrawnAt *time.Time
}
