// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 zhangpan-soft

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/config"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

const defaultCheckInterval = 5 * time.Minute

type confirmationChecker struct {
	confirmations ConfirmationService
	accounts      AccountDirectory
	settings      *config.Store
	runtime       *models.RuntimeContext
	logger        *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConfirmationChecker creates a checker that polls pending confirmations
// on a ticker and accepts trade and market confirmations when the settings
// allow it. The checker is idle until Start is called.
func NewConfirmationChecker(confirmations ConfirmationService, accounts AccountDirectory, settings *config.Store, runtime *models.RuntimeContext, log *logger.Logger) ConfirmationChecker {
	return &confirmationChecker{
		confirmations: confirmations,
		accounts:      accounts,
		settings:      settings,
		runtime:       runtime,
		logger:        log,
	}
}

// Run implements Worker. The checker stops when Stop is called.
func (c *confirmationChecker) Run() {
	c.Start(context.Background())
}

// Start stops any previously running checker, then launches a background
// goroutine that walks the configured accounts every interval. The interval
// is read from the settings once per start; the enable flags are re-read on
// every pass so toggling them takes effect without a restart.
func (c *confirmationChecker) Start(ctx context.Context) {
	interval := c.settings.Settings().PeriodicCheckingInterval.Std()
	if interval <= 0 {
		interval = defaultCheckInterval
	}

	c.Stop()

	c.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				c.checkOnce(jobCtx)
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until the
// goroutine has fully exited. Safe to call when the checker is not running.
func (c *confirmationChecker) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *confirmationChecker) checkOnce(ctx context.Context) {
	cfg := c.settings.Settings()
	if !cfg.PeriodicChecking {
		return
	}

	passkey := c.runtime.Passkey()
	if cfg.Encrypted && passkey == "" {
		c.logger.Debug().Msg("confirmation check skipped, records are locked")
		return
	}

	var names []string
	if cfg.PeriodicCheckingCheckAll {
		names = c.accounts.Accounts()
	} else if selected := c.runtime.SelectedAccount(); selected != "" {
		names = []string{selected}
	}

	for _, name := range names {
		if ctx.Err() != nil {
			return
		}
		c.checkAccount(ctx, cfg, name, passkey)
	}
}

func (c *confirmationChecker) checkAccount(ctx context.Context, cfg config.Settings, accountName, passkey string) {
	listing := c.confirmations.List(ctx, accountName, passkey)
	if !listing.OK() || listing.Payload == nil {
		c.logger.Warn().
			Str("account", accountName).
			Int("result_code", int(listing.ResultCode)).
			Str("message", listing.Message).
			Msg("confirmation check failed")
		return
	}

	for _, confirmation := range listing.Payload.Confirmations {
		if !autoAcceptable(cfg, confirmation.Type) {
			continue
		}

		result := c.confirmations.Accept(ctx, accountName, passkey, confirmation)
		if result.OK() {
			c.logger.Info().
				Str("account", accountName).
				Str("confirmation_id", confirmation.ID).
				Str("type", confirmation.TypeName).
				Msg("confirmation auto-accepted")
			continue
		}
		c.logger.Warn().
			Str("account", accountName).
			Str("confirmation_id", confirmation.ID).
			Int("result_code", int(result.ResultCode)).
			Msg("auto-accept failed")
	}
}

func autoAcceptable(cfg config.Settings, confirmationType models.ConfirmationType) bool {
	switch confirmationType {
	case models.ConfirmationTypeMarketListing:
		return cfg.AutoConfirmMarketTransactions
	case models.ConfirmationTypeTrade:
		return cfg.AutoConfirmTrades
	default:
		return false
	}
}
