// Package mfa implements TOTP enrollment and verification plus one-shot
// backup codes. Enrollments are held in memory; the point is the
// walkthrough of the protocol, not durable account state.
package mfa

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/secbyexample/seclab/pkg/cryptox"
)

const (
	backupCodeCount = 10
	backupCodeBytes = cryptox.TokenSize128

	totpPeriod = 30
)

var (
	ErrInvalidCode    = errors.New("invalid TOTP code")
	ErrNotEnrolled    = errors.New("account not enrolled")
	ErrAlreadyActive  = errors.New("MFA already active for this account")
	ErrBackupCodeUsed = errors.New("backup code invalid or already used")
)

// Enrollment is what the account holder receives after enrolling: the
// shared secret and the otpauth:// URL an authenticator app can scan.
type Enrollment struct {
	Account string
	Secret  string
	URL     string
}

type account struct {
	secret string
	active bool
	// Backup code fingerprints, cleared as they are spent.
	backupCodes map[string]bool
}

// Manager tracks TOTP enrollments per account name.
type Manager struct {
	Issuer string

	mu       sync.Mutex
	accounts map[string]*account
}

func NewManager(issuer string) *Manager {
	return &Manager{
		Issuer:   issuer,
		accounts: make(map[string]*account),
	}
}

// Enroll generates a fresh TOTP secret for the account. MFA is not active
// until Activate succeeds with a valid code, proving the authenticator was
// actually set up.
func (m *Manager) Enroll(accountName string) (Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if acc, ok := m.accounts[accountName]; ok && acc.active {
		return Enrollment{}, ErrAlreadyActive
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.Issuer,
		AccountName: accountName,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	m.accounts[accountName] = &account{secret: key.Secret()}

	return Enrollment{
		Account: accountName,
		Secret:  key.Secret(),
		URL:     key.URL(),
	}, nil
}

// Activate turns the enrollment on after the account holder proves they
// can produce a valid code, and hands back single-use backup codes.
func (m *Manager) Activate(accountName, code string, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountName]
	if !ok {
		return nil, ErrNotEnrolled
	}
	if acc.active {
		return nil, ErrAlreadyActive
	}
	if !validCode(code, acc.secret, now) {
		return nil, ErrInvalidCode
	}

	codes := make([]string, backupCodeCount)
	acc.backupCodes = make(map[string]bool, backupCodeCount)
	for i := range codes {
		code, err := cryptox.GenerateToken(backupCodeBytes)
		if err != nil {
			return nil, fmt.Errorf("generate backup code: %w", err)
		}
		codes[i] = code
		acc.backupCodes[cryptox.FingerprintToken(code)] = true
	}

	acc.active = true
	return codes, nil
}

// Verify checks a TOTP code against an active enrollment.
func (m *Manager) Verify(accountName, code string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountName]
	if !ok || !acc.active {
		return ErrNotEnrolled
	}
	if !validCode(code, acc.secret, now) {
		return ErrInvalidCode
	}
	return nil
}

// VerifyBackupCode spends a backup code. Each code works exactly once;
// the comparison runs against fingerprints in constant time.
func (m *Manager) VerifyBackupCode(accountName, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountName]
	if !ok || !acc.active {
		return ErrNotEnrolled
	}

	probe := cryptox.FingerprintToken(code)
	for fp := range acc.backupCodes {
		if cryptox.ConstantTimeEquals(fp, probe) {
			delete(acc.backupCodes, fp)
			return nil
		}
	}
	return ErrBackupCodeUsed
}

// RemainingBackupCodes reports how many unspent backup codes an account
// still holds.
func (m *Manager) RemainingBackupCodes(accountName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountName]
	if !ok {
		return 0
	}
	return len(acc.backupCodes)
}

// CodeAt computes the TOTP code for a secret at a given instant. The demo
// uses it to play the role of the authenticator app.
func CodeAt(secret string, now time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, now, validateOpts())
}

func validCode(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, validateOpts())
	return err == nil && ok
}

func validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}
