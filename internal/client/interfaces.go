package client

import "context"

// Client defines the minimal lifecycle contract for runnable authenticator
// applications.
type Client interface {
	// Run starts the application and blocks until ctx is cancelled.
	Run(ctx context.Context) error
}
