// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface, a Workers aggregate that runs several
// workers in a unified way, and the periodic confirmation checker.
package workers

import (
	"context"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations are expected to block for the duration of their work
// or spawn goroutines internally.
type Worker interface {
	Run()
}

// ConfirmationService is the slice of the confirmation client the checker
// consumes.
type ConfirmationService interface {
	List(ctx context.Context, accountName, passkey string) models.Envelope[models.ConfirmationList]
	Accept(ctx context.Context, accountName, passkey string, confirmation models.Confirmation) models.Envelope[models.ConfirmationActionResult]
}

// AccountDirectory lists the account names the checker may walk.
type AccountDirectory interface {
	Accounts() []string
}

// ConfirmationChecker is the background job that polls pending
// confirmations and auto-accepts the configured kinds.
type ConfirmationChecker interface {
	Worker

	// Start stops any previous run and launches the polling goroutine.
	Start(ctx context.Context)

	// Stop cancels the polling goroutine and waits for it to exit. Safe
	// to call when the checker is not running.
	Stop()
}
