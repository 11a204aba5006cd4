package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// StartResult is the provider's synchronous answer to a credential
// start: whether a guard action is still required and which actions it
// will accept.
type StartResult struct {
	ActionRequired bool
	ValidActions   []models.GuardAction
}

// Provider abstracts the authentication wire protocol of one login
// attempt. One provider instance serves exactly one attempt and is
// discarded with it.
type Provider interface {
	// StartWithCredentials begins a password login. A pre-supplied guard
	// code may ride along.
	StartWithCredentials(ctx context.Context, accountName, password, guardCode string) (*StartResult, error)

	// SubmitGuardCode answers a pending guard prompt. Rejection returns a
	// *ProviderError carrying the platform code.
	SubmitGuardCode(ctx context.Context, code string) error

	// RefreshAccessToken exchanges a refresh token for fresh credentials.
	RefreshAccessToken(ctx context.Context, refreshToken string) error

	// Done is closed-equivalent: it delivers exactly one value when the
	// attempt reaches its asynchronous outcome. A nil error means
	// authenticated.
	Done() <-chan error

	// Credentials returns the tokens, subject id and cookies of an
	// authenticated attempt.
	Credentials(ctx context.Context) (*models.LoginData, error)

	// Cancel aborts the attempt. Safe to call more than once.
	Cancel()
}

// ProviderFactory builds one Provider per login attempt.
type ProviderFactory func() Provider

// ProviderError is a failure reported by the authentication backend
// with its platform result code attached.
type ProviderError struct {
	Code    models.EResult
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// resultCode extracts the platform code from err, defaulting to Fail
// for errors that carry none.
func resultCode(err error) models.EResult {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return models.EResultFail
}
