// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 zhangpan-soft

// Package session runs the per-account login state machine. Every
// outward notification is a models.LoginEvent; nothing is ever thrown
// back into a caller's synchronous flow.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// State is the phase of one login attempt. Terminal phases have no
// State value: reaching them discards the attempt.
type State int

const (
	StateStarting State = iota
	StateAwaitingGuard
	StateAuthenticating
)

// DefaultLoginTimeout bounds one attempt from Starting to a terminal
// state when the manager is built without an explicit timeout.
const DefaultLoginTimeout = 120 * time.Second

// attempt is one in-flight login. The generation counter makes stale
// async completions recognizable: a handler whose generation no longer
// matches the account's current attempt must be a no-op.
type attempt struct {
	generation uint64
	provider   Provider
	state      State
	cancel     context.CancelFunc
}

// Manager owns the live login map, one attempt per account name at
// most. Starting a new login for an account fully discards the
// previous attempt first.
type Manager struct {
	newProvider ProviderFactory
	notify      func(models.LoginEvent)
	timeout     time.Duration
	logger      *logger.Logger

	mu         sync.Mutex
	generation uint64
	attempts   map[string]*attempt
	waiters    map[string][]chan models.LoginEvent
}

// NewManager builds a Manager. notify receives every event; it may be
// nil when only RefreshLogin waiters consume events. timeout <= 0
// falls back to DefaultLoginTimeout.
func NewManager(newProvider ProviderFactory, notify func(models.LoginEvent), timeout time.Duration, log *logger.Logger) *Manager {
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	return &Manager{
		newProvider: newProvider,
		notify:      notify,
		timeout:     timeout,
		logger:      log,
		attempts:    make(map[string]*attempt),
		waiters:     make(map[string][]chan models.LoginEvent),
	}
}

// Login starts a new attempt for opts.AccountName. Exactly one of
// Password and RefreshToken must be set. All outcomes, including
// argument errors, arrive as events.
func (m *Manager) Login(opts models.LoginOptions) {
	if opts.AccountName == "" {
		m.dispatch(models.LoginEvent{
			AccountName:  "unknown",
			ResultCode:   models.EResultInvalidParam,
			Status:       models.StatusFailed,
			ErrorMessage: "account name is required",
		})
		return
	}
	if (opts.Password == "") == (opts.RefreshToken == "") {
		m.dispatch(models.LoginEvent{
			AccountName:  opts.AccountName,
			ResultCode:   models.EResultInvalidParam,
			Status:       models.StatusFailed,
			ErrorMessage: "exactly one of password and refresh_token must be set",
		})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if old, ok := m.attempts[opts.AccountName]; ok {
		old.cancel()
		old.provider.Cancel()
	}
	m.generation++
	a := &attempt{
		generation: m.generation,
		provider:   m.newProvider(),
		state:      StateStarting,
		cancel:     cancel,
	}
	m.attempts[opts.AccountName] = a
	m.mu.Unlock()

	m.logger.Debug().Str("account", opts.AccountName).Uint64("generation", a.generation).Msg("login attempt started")

	go m.watchTimeout(ctx, opts.AccountName, a)
	go m.run(ctx, opts, a)
}

// SubmitGuardCode answers the guard prompt of accountName's attempt.
// Valid only while the attempt awaits a guard action; a rejected code
// keeps the attempt in place so the caller can retry without
// restarting the login.
func (m *Manager) SubmitGuardCode(ctx context.Context, accountName, code string) {
	m.mu.Lock()
	a, ok := m.attempts[accountName]
	if !ok || a.state != StateAwaitingGuard {
		m.mu.Unlock()
		m.dispatch(models.LoginEvent{
			AccountName:  accountName,
			ResultCode:   models.EResultFail,
			Status:       models.StatusFailed,
			ErrorMessage: "no login is awaiting a guard code",
		})
		return
	}
	provider := a.provider
	m.mu.Unlock()

	if err := provider.SubmitGuardCode(ctx, code); err != nil {
		m.dispatchIfCurrent(accountName, a, models.LoginEvent{
			AccountName:  accountName,
			ResultCode:   resultCode(err),
			Status:       models.StatusFailed,
			ErrorMessage: err.Error(),
		})
		return
	}

	m.mu.Lock()
	if cur, ok := m.attempts[accountName]; ok && cur.generation == a.generation {
		cur.state = StateAuthenticating
	}
	m.mu.Unlock()
}

// CancelLogin discards accountName's attempt if one is in flight.
// Calling it with nothing active is a no-op.
func (m *Manager) CancelLogin(accountName string) {
	m.mu.Lock()
	a, ok := m.attempts[accountName]
	if ok {
		a.cancel()
		a.provider.Cancel()
		delete(m.attempts, accountName)
	}
	m.mu.Unlock()

	if ok {
		m.dispatch(models.LoginEvent{
			AccountName: accountName,
			ResultCode:  models.EResultOK,
			Status:      models.StatusCancelled,
		})
	}
}

// State reports the phase of accountName's attempt.
func (m *Manager) State(accountName string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[accountName]
	if !ok {
		return 0, false
	}
	return a.state, true
}

// RefreshLogin runs a token-refresh login and blocks until its
// terminal event. The confirmation client uses it to renew an expired
// access token before listing.
func (m *Manager) RefreshLogin(ctx context.Context, accountName, refreshToken string) (models.LoginEvent, error) {
	ch := make(chan models.LoginEvent, 1)
	m.mu.Lock()
	m.waiters[accountName] = append(m.waiters[accountName], ch)
	m.mu.Unlock()

	m.Login(models.LoginOptions{AccountName: accountName, RefreshToken: refreshToken})

	select {
	case event := <-ch:
		return event, nil
	case <-ctx.Done():
		m.CancelLogin(accountName)
		return models.LoginEvent{}, ctx.Err()
	}
}

func (m *Manager) run(ctx context.Context, opts models.LoginOptions, a *attempt) {
	if opts.RefreshToken != "" {
		m.dispatchIfCurrent(opts.AccountName, a, models.LoginEvent{
			AccountName: opts.AccountName,
			ResultCode:  models.EResultOK,
			Status:      models.StatusConverting,
		})
		if err := a.provider.RefreshAccessToken(ctx, opts.RefreshToken); err != nil {
			m.fail(opts.AccountName, a, err)
			return
		}
		m.succeed(ctx, opts.AccountName, a)
		return
	}

	result, err := a.provider.StartWithCredentials(ctx, opts.AccountName, opts.Password, opts.GuardCode)
	if err != nil {
		m.fail(opts.AccountName, a, err)
		return
	}

	if result != nil && result.ActionRequired {
		m.mu.Lock()
		if cur, ok := m.attempts[opts.AccountName]; ok && cur.generation == a.generation {
			cur.state = StateAwaitingGuard
		}
		m.mu.Unlock()

		m.dispatchIfCurrent(opts.AccountName, a, models.LoginEvent{
			AccountName:  opts.AccountName,
			ResultCode:   models.EResultAccountLogonDenied,
			Status:       models.StatusNeed2FA,
			ValidActions: result.ValidActions,
		})
	} else {
		m.mu.Lock()
		if cur, ok := m.attempts[opts.AccountName]; ok && cur.generation == a.generation {
			cur.state = StateAuthenticating
		}
		m.mu.Unlock()
	}

	select {
	case err := <-a.provider.Done():
		if err != nil {
			m.fail(opts.AccountName, a, err)
			return
		}
		m.succeed(ctx, opts.AccountName, a)
	case <-ctx.Done():
		// Timed out or superseded; whoever cancelled already spoke.
	}
}

func (m *Manager) watchTimeout(ctx context.Context, accountName string, a *attempt) {
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return
	}

	m.mu.Lock()
	cur, ok := m.attempts[accountName]
	if !ok || cur.generation != a.generation {
		m.mu.Unlock()
		return
	}
	delete(m.attempts, accountName)
	m.mu.Unlock()

	a.cancel()
	a.provider.Cancel()

	m.dispatch(models.LoginEvent{
		AccountName:  accountName,
		ResultCode:   models.EResultTimeout,
		Status:       models.StatusTimeout,
		ErrorMessage: "connection timed out",
	})
}

// fail reports a provider failure. Invalid credentials and access
// denial discard the attempt so a retry starts clean; a wrong guard
// code leaves it in place.
func (m *Manager) fail(accountName string, a *attempt, err error) {
	code := resultCode(err)

	emitted := m.dispatchIfCurrent(accountName, a, models.LoginEvent{
		AccountName:  accountName,
		ResultCode:   code,
		Status:       models.StatusFailed,
		ErrorMessage: err.Error(),
	})
	if !emitted {
		return
	}

	switch code {
	case models.EResultInvalidPassword, models.EResultAccessDenied:
		m.mu.Lock()
		if cur, ok := m.attempts[accountName]; ok && cur.generation == a.generation {
			cur.cancel()
			cur.provider.Cancel()
			delete(m.attempts, accountName)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) succeed(ctx context.Context, accountName string, a *attempt) {
	data, err := a.provider.Credentials(ctx)
	if err != nil {
		m.dispatchIfCurrent(accountName, a, models.LoginEvent{
			AccountName:  accountName,
			ResultCode:   resultCode(err),
			Status:       models.StatusFailed,
			ErrorMessage: "failed to retrieve session credentials",
		})
		return
	}

	m.mu.Lock()
	cur, ok := m.attempts[accountName]
	if !ok || cur.generation != a.generation {
		m.mu.Unlock()
		return
	}
	delete(m.attempts, accountName)
	m.mu.Unlock()

	a.cancel()

	m.dispatch(models.LoginEvent{
		AccountName: accountName,
		ResultCode:  models.EResultOK,
		Status:      models.StatusLoginSuccess,
		Data:        data,
	})
}

// dispatchIfCurrent emits event only while a is still the account's
// active attempt, so completions of a superseded login stay silent.
func (m *Manager) dispatchIfCurrent(accountName string, a *attempt, event models.LoginEvent) bool {
	m.mu.Lock()
	cur, ok := m.attempts[accountName]
	current := ok && cur.generation == a.generation
	m.mu.Unlock()

	if !current {
		return false
	}
	m.dispatch(event)
	return true
}

func (m *Manager) dispatch(event models.LoginEvent) {
	m.logger.Debug().
		Str("account", event.AccountName).
		Str("status", string(event.Status)).
		Int("result_code", int(event.ResultCode)).
		Msg("login event")

	if m.notify != nil {
		m.notify(event)
	}

	switch event.Status {
	case models.StatusLoginSuccess, models.StatusFailed, models.StatusTimeout, models.StatusCancelled:
		m.mu.Lock()
		waiters := m.waiters[event.AccountName]
		delete(m.waiters, event.AccountName)
		m.mu.Unlock()

		for _, ch := range waiters {
			select {
			case ch <- event:
			default:
			}
		}
	}
}
