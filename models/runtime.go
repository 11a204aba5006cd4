package models

import "sync"

// RuntimeContext holds process-wide state that is created at startup and
// never persisted: the current passkey, the selected account, and the last
// generated code. Components receive it explicitly instead of reaching into
// package-level globals.
type RuntimeContext struct {
	mu sync.RWMutex

	passkey         string
	selectedAccount string
	lastCode        string
	lastProgress    float64
}

// NewRuntimeContext returns an empty runtime context.
func NewRuntimeContext() *RuntimeContext {
	return &RuntimeContext{}
}

// SetPasskey stores the passkey for the current unlock period.
func (r *RuntimeContext) SetPasskey(passkey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passkey = passkey
}

// Passkey returns the current passkey, empty when the vault is locked.
func (r *RuntimeContext) Passkey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.passkey
}

// Lock clears the passkey and the last generated code.
func (r *RuntimeContext) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passkey = ""
	r.lastCode = ""
	r.lastProgress = 0
}

// SelectAccount records the account the user is currently working with.
func (r *RuntimeContext) SelectAccount(accountName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectedAccount = accountName
}

// SelectedAccount returns the currently selected account name.
func (r *RuntimeContext) SelectedAccount() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selectedAccount
}

// SetLastCode records the most recently generated guard code and its window
// progress fraction.
func (r *RuntimeContext) SetLastCode(code string, progress float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastCode = code
	r.lastProgress = progress
}

// LastCode returns the most recently generated guard code and its progress.
func (r *RuntimeContext) LastCode() (string, float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastCode, r.lastProgress
}
