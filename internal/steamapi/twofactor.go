package steamapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// NewDeviceID generates the device identifier the mobile endpoints
// expect, in the form "android:<uuid>".
func NewDeviceID() string {
	return clientPlatform + ":" + strings.ToLower(uuid.NewString())
}

// postService POSTs a form to an ITwoFactorService style endpoint,
// unwraps the {"response": ...} envelope into out and returns the call
// metadata. The access token rides in the query string, never the body.
func (c *Client) postService(ctx context.Context, apiInterface, method string, version int, accessToken string, form map[string]string, out any) (CallMeta, error) {
	req := c.http.R().
		SetContext(ctx).
		SetFormData(form)
	if accessToken != "" {
		req.SetQueryParam("access_token", accessToken)
	}

	resp, err := req.Post(serviceEndpoint(c.apiBase, apiInterface, method, version))
	if err != nil {
		return CallMeta{}, fmt.Errorf("%s/%s request: %w", apiInterface, method, err)
	}

	meta := metaFrom(resp)
	if err = mapHTTPError(resp); err != nil {
		return meta, err
	}

	if out != nil {
		var envelope models.APIEnvelope
		if err = json.Unmarshal(resp.Body(), &envelope); err != nil {
			return meta, fmt.Errorf("decode %s/%s response: %w", apiInterface, method, err)
		}
		if len(envelope.Response) > 0 {
			if err = json.Unmarshal(envelope.Response, out); err != nil {
				return meta, fmt.Errorf("decode %s/%s payload: %w", apiInterface, method, err)
			}
		}
	}
	return meta, nil
}

// QueryTime asks the platform for its current time. The request carries
// a placeholder subject id and no authentication. It also implements
// timesync.TimeSource.
func (c *Client) QueryTime(ctx context.Context) (int64, int64, error) {
	var body models.QueryTimeResponse
	_, err := c.postService(ctx, "TwoFactor", "QueryTime", 1, "", map[string]string{
		"steamid": "0",
	}, &body)
	if err != nil {
		return 0, 0, err
	}

	serverTime, err := strconv.ParseInt(body.ServerTime, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse server time %q: %w", body.ServerTime, err)
	}
	return serverTime, body.TryAgainSeconds, nil
}

// RegisterMobileDevice announces a fresh device id for the account and
// returns it for persistence in the vault record.
func (c *Client) RegisterMobileDevice(ctx context.Context, accessToken string) (string, CallMeta, error) {
	deviceID := NewDeviceID()
	meta, err := c.postService(ctx, "MobileDevice", "RegisterMobileDevice", 1, accessToken, map[string]string{
		"language":    defaultLanguage,
		"app_version": defaultAppVersion,
		"deviceid":    deviceID,
	}, nil)
	if err != nil {
		return "", meta, err
	}
	return deviceID, meta, nil
}

// AddAuthenticator begins enrollment. The returned secret material must
// be written to the vault before finalization; losing it orphans the
// account.
func (c *Client) AddAuthenticator(ctx context.Context, accessToken, deviceID string) (*models.AddAuthenticatorResponse, CallMeta, error) {
	steamID, err := models.SteamIDFromAccessToken(accessToken)
	if err != nil {
		return nil, CallMeta{}, err
	}

	var body models.AddAuthenticatorResponse
	meta, err := c.postService(ctx, "TwoFactor", "AddAuthenticator", 1, accessToken, map[string]string{
		"steamid":            steamID,
		"authenticator_type": "1",
		"device_identifier":  deviceID,
		"sms_phone_id":       "1",
	}, &body)
	if err != nil {
		return nil, meta, err
	}
	return &body, meta, nil
}

// FinalizeAddAuthenticator completes enrollment with the SMS activation
// code and a freshly generated guard code.
func (c *Client) FinalizeAddAuthenticator(ctx context.Context, accessToken, activationCode, authenticatorCode string, authenticatorTime int64) (*models.FinalizeAddAuthenticatorResponse, CallMeta, error) {
	steamID, err := models.SteamIDFromAccessToken(accessToken)
	if err != nil {
		return nil, CallMeta{}, err
	}

	var body models.FinalizeAddAuthenticatorResponse
	meta, err := c.postService(ctx, "TwoFactor", "FinalizeAddAuthenticator", 1, accessToken, map[string]string{
		"steamid":            steamID,
		"activation_code":    activationCode,
		"authenticator_code": authenticatorCode,
		"authenticator_time": strconv.FormatInt(authenticatorTime, 10),
	}, &body)
	if err != nil {
		return nil, meta, err
	}
	return &body, meta, nil
}

// RemoveAuthenticatorViaChallengeStart asks the platform to send the
// removal challenge SMS.
func (c *Client) RemoveAuthenticatorViaChallengeStart(ctx context.Context, accessToken string) (*models.RemoveAuthenticatorChallengeResponse, CallMeta, error) {
	var body models.RemoveAuthenticatorChallengeResponse
	meta, err := c.postService(ctx, "TwoFactor", "RemoveAuthenticatorViaChallengeStart", 1, accessToken, map[string]string{}, &body)
	if err != nil {
		return nil, meta, err
	}
	return &body, meta, nil
}

// RemoveAuthenticatorViaChallengeContinue submits the challenge SMS
// code. A replacement token is always requested so the account stays
// enrolled under fresh secrets.
func (c *Client) RemoveAuthenticatorViaChallengeContinue(ctx context.Context, accessToken, smsCode string) (*models.RemoveAuthenticatorChallengeResponse, CallMeta, error) {
	var body models.RemoveAuthenticatorChallengeResponse
	meta, err := c.postService(ctx, "TwoFactor", "RemoveAuthenticatorViaChallengeContinue", 1, accessToken, map[string]string{
		"sms_code":           smsCode,
		"generate_new_token": "1",
	}, &body)
	if err != nil {
		return nil, meta, err
	}
	return &body, meta, nil
}

// QueryAuthenticatorStatus reports the enrollment state of the
// account's authenticator.
func (c *Client) QueryAuthenticatorStatus(ctx context.Context, accessToken string) (*models.AuthenticatorStatusResponse, CallMeta, error) {
	steamID, err := models.SteamIDFromAccessToken(accessToken)
	if err != nil {
		return nil, CallMeta{}, err
	}

	var body models.AuthenticatorStatusResponse
	meta, err := c.postService(ctx, "TwoFactor", "QueryStatus", 1, accessToken, map[string]string{
		"steamid": steamID,
	}, &body)
	if err != nil {
		return nil, meta, err
	}
	return &body, meta, nil
}
