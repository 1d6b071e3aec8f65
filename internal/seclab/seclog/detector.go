package seclog

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Detector spots brute-force login patterns. Each (username, source) pair
// gets a token bucket sized to the allowed failure budget; once a pair burns
// through its budget the detector flags it and emits a suspicious_activity
// event.
type Detector struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	flagged  map[string]time.Time

	budget int
	window time.Duration
	logger *Logger
}

// NewDetector allows up to budget failed logins per key within window before
// flagging. logger may be nil.
func NewDetector(logger *Logger, budget int, window time.Duration) *Detector {
	if budget <= 0 {
		budget = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Detector{
		limiters: make(map[string]*rate.Limiter),
		flagged:  make(map[string]time.Time),
		budget:   budget,
		window:   window,
		logger:   logger,
	}
}

// RecordFailure notes one failed login for the pair and reports whether the
// pair is now flagged as a brute-force source.
func (d *Detector) RecordFailure(username, source string) bool {
	key := username + "|" + source

	d.mu.Lock()
	lim, ok := d.limiters[key]
	if !ok {
		// The bucket refills one failure per window/budget, so sustained
		// guessing stays flagged while a stray typo ages out.
		lim = rate.NewLimiter(rate.Every(d.window/time.Duration(d.budget)), d.budget)
		d.limiters[key] = lim
	}
	allowed := lim.Allow()
	_, alreadyFlagged := d.flagged[key]
	if !allowed && !alreadyFlagged {
		d.flagged[key] = time.Now().UTC()
	}
	d.mu.Unlock()

	if !allowed && !alreadyFlagged {
		d.logger.SuspiciousActivity("possible brute force attack", map[string]any{
			"username":      username,
			"source":        source,
			"failed_budget": d.budget,
			"window":        d.window.String(),
		})
	}
	return !allowed
}

// RecordSuccess clears the flag for a pair after a legitimate login.
func (d *Detector) RecordSuccess(username, source string) {
	key := username + "|" + source

	d.mu.Lock()
	delete(d.flagged, key)
	delete(d.limiters, key)
	d.mu.Unlock()
}

// Flagged reports whether the pair has been flagged and when.
func (d *Detector) Flagged(username, source string) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	at, ok := d.flagged[username+"|"+source]
	return at, ok
}
