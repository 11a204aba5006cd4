package store

import (
	"context"
	"time"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// HistoryFilter narrows a confirmation history listing. Zero-value fields
// apply no filtering.
type HistoryFilter struct {
	// AccountName restricts the listing to one account when non-empty.
	AccountName string

	// Action restricts the listing to one resolution kind ("allow" or
	// "cancel") when non-empty.
	Action string

	// Limit caps the number of returned entries when positive. Entries are
	// returned newest first.
	Limit uint64
}

// ConfirmationHistory is the local audit log of resolved confirmations.
type ConfirmationHistory interface {
	RecordAction(ctx context.Context, entry models.ConfirmationHistoryEntry) error
	History(ctx context.Context, filter HistoryFilter) ([]models.ConfirmationHistoryEntry, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}
