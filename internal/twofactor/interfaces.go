package twofactor

import (
	"context"
	"time"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/steamapi"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// TwoFactorAPI is the slice of the HTTP adapter the enrollment service
// consumes.
type TwoFactorAPI interface {
	RegisterMobileDevice(ctx context.Context, accessToken string) (string, steamapi.CallMeta, error)
	AddAuthenticator(ctx context.Context, accessToken, deviceID string) (*models.AddAuthenticatorResponse, steamapi.CallMeta, error)
	FinalizeAddAuthenticator(ctx context.Context, accessToken, activationCode, authenticatorCode string, authenticatorTime int64) (*models.FinalizeAddAuthenticatorResponse, steamapi.CallMeta, error)
	RemoveAuthenticatorViaChallengeStart(ctx context.Context, accessToken string) (*models.RemoveAuthenticatorChallengeResponse, steamapi.CallMeta, error)
	RemoveAuthenticatorViaChallengeContinue(ctx context.Context, accessToken, smsCode string) (*models.RemoveAuthenticatorChallengeResponse, steamapi.CallMeta, error)
	QueryAuthenticatorStatus(ctx context.Context, accessToken string) (*models.AuthenticatorStatusResponse, steamapi.CallMeta, error)
}

// AccountVault is the slice of the vault the enrollment service consumes.
type AccountVault interface {
	Get(ctx context.Context, accountName, passkey string) (*models.SteamAccount, error)
	Create(ctx context.Context, record *models.SteamAccount, passkey string) error
	Update(ctx context.Context, record *models.SteamAccount, passkey string) error
	Remove(accountName string) error
}

// Clock yields the synchronized platform time used for code generation.
type Clock interface {
	EnsureFresh(ctx context.Context)
	Now() time.Time
}
