package client

import (
	"context"
	"fmt"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/config"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/confirm"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/crypto"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/session"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/steamapi"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/store"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/timesync"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/twofactor"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/vault"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/workers"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// App is the composition root. Presentation surfaces reach the exported
// services directly; the App itself only owns startup, unlock state, and
// shutdown.
type App struct {
	Settings      *config.Store
	Runtime       *models.RuntimeContext
	Vault         *vault.Vault
	Clock         *timesync.Sync
	API           *steamapi.Client
	Sessions      *session.Manager
	Confirmations *confirm.Service
	Authenticator *twofactor.Service
	History       store.ConfirmationHistory

	db      *store.DB
	workers *workers.Workers
	logger  *logger.Logger
}

// NewApp wires the full runtime from merged settings. newProvider supplies
// login transports; when nil, login attempts fail until a provider is
// configured. notify receives every login event and may be nil.
func NewApp(ctx context.Context, cfg *config.Settings, newProvider session.ProviderFactory, notify func(models.LoginEvent), log *logger.Logger) (*App, error) {
	settings, err := config.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("settings store: %w", err)
	}

	runtime := models.NewRuntimeContext()

	api := steamapi.NewClient(steamapi.Options{
		Proxy:   cfg.Proxy,
		Timeout: cfg.Timeout.Std(),
	}, log)

	clock := timesync.NewSync(api, log)
	vlt := vault.NewVault(crypto.NewAccountCodec(), settings, log)

	var (
		db      *store.DB
		history store.ConfirmationHistory
	)
	if cfg.HistoryDSN != "" {
		db, err = store.NewConnectSQLite(ctx, cfg.HistoryDSN, log)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		if err = db.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate history store: %w", err)
		}
		history = store.NewConfirmationHistory(db, log)
	}

	if newProvider == nil {
		newProvider = unconfiguredProviderFactory
	}
	sessions := session.NewManager(newProvider, notify, cfg.LoginTimeout.Std(), log)

	confirmations := confirm.NewService(api, vlt, sessions, clock, history, log)
	authenticator := twofactor.NewService(api, vlt, clock, runtime, log)

	checker := workers.NewConfirmationChecker(confirmations, vlt, settings, runtime, log)

	return &App{
		Settings:      settings,
		Runtime:       runtime,
		Vault:         vlt,
		Clock:         clock,
		API:           api,
		Sessions:      sessions,
		Confirmations: confirmations,
		Authenticator: authenticator,
		History:       history,
		db:            db,
		workers:       workers.NewWorkers(checker),
		logger:        log,
	}, nil
}

// Run synchronizes the clock, starts the background workers, and blocks
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.Clock.EnsureFresh(ctx)
	a.workers.Run()
	a.logger.Info().Msg("authenticator core started")

	<-ctx.Done()

	a.workers.Stop()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("history store close failed")
		}
	}
	a.logger.Info().Msg("authenticator core stopped")
	return nil
}

// Unlock verifies the passkey against the first stored record and keeps it
// in the runtime context for subsequent calls. With encryption disabled the
// vault is always unlocked.
func (a *App) Unlock(ctx context.Context, passkey string) error {
	cfg := a.Settings.Settings()
	if !cfg.Encrypted {
		a.Runtime.SetPasskey("")
		return nil
	}

	if entries := cfg.Entries; len(entries) > 0 {
		if _, err := a.Vault.Get(ctx, entries[0].AccountName, passkey); err != nil {
			return err
		}
	}

	a.Runtime.SetPasskey(passkey)
	return nil
}

// Lock discards the passkey, the last generated code, and every cached
// decrypted record.
func (a *App) Lock() {
	a.Runtime.Lock()
	a.Vault.Clear()
	a.logger.Info().Msg("records locked")
}

// Code returns the current guard code for a stored account using the
// runtime passkey.
func (a *App) Code(ctx context.Context, accountName string) (models.GuardCode, error) {
	return a.Authenticator.Code(ctx, accountName, a.Runtime.Passkey())
}

// unconfiguredProvider rejects every login so the rest of the runtime stays
// usable when no transport has been plugged in.
type unconfiguredProvider struct {
	done chan error
}

func unconfiguredProviderFactory() session.Provider {
	return &unconfiguredProvider{done: make(chan error, 1)}
}

func (p *unconfiguredProvider) StartWithCredentials(context.Context, string, string, string) (*session.StartResult, error) {
	return nil, &session.ProviderError{
		Code:    models.EResultServiceUnavailable,
		Message: "no session provider configured",
	}
}

func (p *unconfiguredProvider) SubmitGuardCode(context.Context, string) error {
	return &session.ProviderError{
		Code:    models.EResultServiceUnavailable,
		Message: "no session provider configured",
	}
}

func (p *unconfiguredProvider) RefreshAccessToken(context.Context, string) error {
	return &session.ProviderError{
		Code:    models.EResultServiceUnavailable,
		Message: "no session provider configured",
	}
}

func (p *unconfiguredProvider) Done() <-chan error { return p.done }

func (p *unconfiguredProvider) Credentials(context.Context) (*models.LoginData, error) {
	return nil, &session.ProviderError{
		Code:    models.EResultServiceUnavailable,
		Message: "no session provider configured",
	}
}

func (p *unconfiguredProvider) Cancel() {}
