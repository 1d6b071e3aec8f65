// Package app wires configuration into a running component graph: store,
// security log, detector and the services on top of them.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/secbyexample/seclab/internal/seclab/consent"
	"github.com/secbyexample/seclab/internal/seclab/mfa"
	"github.com/secbyexample/seclab/internal/seclab/seclog"
	"github.com/secbyexample/seclab/internal/seclab/service"
	"github.com/secbyexample/seclab/internal/seclab/store"
	"github.com/secbyexample/seclab/internal/seclab/store/drivers/memory"
	"github.com/secbyexample/seclab/internal/seclab/store/drivers/sqlite"
	"github.com/secbyexample/seclab/pkg/jwtx"
	"github.com/secbyexample/seclab/pkg/slogx"
)

const BuildVersion = "v0.1.0"

// Application holds every wired component. Construct with New, release
// with Close.
type Application struct {
	Cfg    Config
	Logger *slog.Logger

	Store    store.Store
	Security *seclog.Logger
	Detector *seclog.Detector

	Sessions   *service.SessionService
	Consents   *consent.Manager
	Controller *consent.Controller
	MFA        *mfa.Manager
}

// New validates the configuration and builds the component graph. Any
// error here is a startup error: nothing is half-initialized on return.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		Cfg: cfg,
		Logger: slogx.New(slogx.Config{
			Service: "seclab",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	security, err := seclog.New(cfg.SecurityLogFile, app.Logger)
	if err != nil {
		app.Store.Close()
		return nil, fmt.Errorf("open security log: %w", err)
	}
	app.Security = security
	app.Detector = seclog.NewDetector(security, cfg.MaxLoginFailures, cfg.LoginFailureWindow)

	signer, err := jwtx.NewHS256(cfg.TokenSecret)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init token signer: %w", err)
	}

	creds := &service.CredentialService{Store: app.Store}
	tokens := &service.TokenService{
		Signer:     signer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	app.Sessions = &service.SessionService{
		Creds:    creds,
		Tokens:   tokens,
		Store:    app.Store,
		Security: security,
	}
	app.Consents = &consent.Manager{Store: app.Store, Security: security}
	app.Controller = consent.NewController(security)
	app.MFA = mfa.NewManager(cfg.Issuer)

	app.Logger.Info("application initialized",
		"store_driver", cfg.StoreDriver,
		"access_ttl", cfg.AccessTTL,
		"refresh_ttl", cfg.RefreshTTL,
	)
	return app, nil
}

func (a *Application) initStore() error {
	switch a.Cfg.StoreDriver {
	case StoreDriverMemory:
		a.Store = memory.NewStore()
		return nil
	case StoreDriverSQLite:
		db, err := sqlite.NewStore(a.Cfg.DatabaseFile)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			db.Close()
			return fmt.Errorf("apply migrations: %w", err)
		}
		a.Store = db
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", a.Cfg.StoreDriver)
	}
}

// Close releases the store and the security log sink. Safe to call on a
// partially-built Application.
func (a *Application) Close() error {
	var errs []error
	if a.Security != nil {
		errs = append(errs, a.Security.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
