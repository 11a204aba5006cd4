package confirm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/steamapi"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// CommunityAPI is the slice of the HTTP adapter the service consumes.
type CommunityAPI interface {
	FetchConfirmations(ctx context.Context, q steamapi.ConfirmationQuery) (*models.ConfirmationList, steamapi.CallMeta, error)
	FetchConfirmationDetail(ctx context.Context, q steamapi.ConfirmationQuery, confirmationID string) (json.RawMessage, steamapi.CallMeta, error)
	SendConfirmationOp(ctx context.Context, q steamapi.ConfirmationQuery, op, confirmationID, nonce string) (*models.ConfirmationActionResult, steamapi.CallMeta, error)
}

// SessionRefresher renews an account's access token through a full
// refresh login and reports the terminal event.
type SessionRefresher interface {
	RefreshLogin(ctx context.Context, accountName, refreshToken string) (models.LoginEvent, error)
}

// AccountStore is the slice of the vault the service consumes.
type AccountStore interface {
	Get(ctx context.Context, accountName, passkey string) (*models.SteamAccount, error)
	Update(ctx context.Context, record *models.SteamAccount, passkey string) error
}

// Clock yields the synchronized platform time used for request signing.
type Clock interface {
	EnsureFresh(ctx context.Context)
	Now() time.Time
}

// HistoryRecorder persists accepted and cancelled confirmations. A nil
// recorder disables history.
type HistoryRecorder interface {
	RecordAction(ctx context.Context, entry models.ConfirmationHistoryEntry) error
}
