package models

import "strings"

// SteamAccount is one account's authenticator record as stored in the vault.
// The JSON field names follow the maFile layout so that files produced by
// other authenticator implementations remain readable after import.
// Sensitive fields must never be exposed outside trusted boundaries.
type SteamAccount struct {
	// AccountName is the unique login name of the Steam account.
	// It doubles as the vault key: at most one record per account name.
	AccountName string `json:"account_name"`

	// SteamID is the 64-bit account identifier in decimal string form.
	SteamID string `json:"steamid"`

	// SharedSecret is the base64-encoded TOTP seed used to generate
	// rotating guard codes.
	SharedSecret string `json:"shared_secret"`

	// IdentitySecret is the base64-encoded key used to sign
	// confirmation-related requests.
	IdentitySecret string `json:"identity_secret"`

	// RevocationCode is the one-time code required to remove the
	// authenticator from the account.
	RevocationCode string `json:"revocation_code"`

	// SerialNumber is the serial assigned by the platform when the
	// authenticator was enrolled.
	SerialNumber string `json:"serial_number"`

	// DeviceID is the synthetic mobile device identifier
	// ("android:<uuid>") this authenticator was registered under.
	DeviceID string `json:"device_id"`

	// TokenGID identifies the token generation on the platform side.
	TokenGID string `json:"token_gid"`

	// Status is the enrollment status reported by the platform.
	Status int `json:"status"`

	// FullyEnrolled is true once FinalizeAddAuthenticator has succeeded.
	FullyEnrolled bool `json:"fully_enrolled"`

	// Session holds the tokens and cookies of the last successful login.
	// It is present only after a login and is wholly replaced, never
	// merge-patched, on refresh.
	Session *SteamSession `json:"Session,omitempty"`
}

// Clone returns an independent copy of the record, including the
// session sub-object and its cookie slice.
func (a *SteamAccount) Clone() *SteamAccount {
	if a == nil {
		return nil
	}
	out := *a
	if a.Session != nil {
		session := *a.Session
		session.Cookies = append([]string(nil), a.Session.Cookies...)
		out.Session = &session
	}
	return &out
}

// SteamSession is the session sub-object of a vault record. All fields come
// verbatim from a LoginSuccess event.
type SteamSession struct {
	// AccessToken is the short-lived credential sent with API calls.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential used to renew AccessToken.
	RefreshToken string `json:"refresh_token"`

	// Cookies are the web session cookies ("name=value" pairs) for
	// community endpoints.
	Cookies []string `json:"cookies"`

	// SteamID is the 64-bit account identifier the session belongs to.
	SteamID string `json:"SteamID"`

	// SessionID is the community session identifier cookie value.
	SessionID string `json:"SessionID"`

	// AccessExpiry is the Unix-seconds expiry of AccessToken.
	AccessExpiry int64 `json:"at"`

	// RefreshExpiry is the Unix-seconds expiry of RefreshToken.
	RefreshExpiry int64 `json:"rt"`
}

// NewSessionFromLoginData converts a LoginSuccess payload into a session
// sub-object. Token expiries are read from the tokens' own exp claims and
// left zero when a token does not carry one.
func NewSessionFromLoginData(data *LoginData) *SteamSession {
	if data == nil {
		return nil
	}

	session := &SteamSession{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		Cookies:      append([]string(nil), data.Cookies...),
		SteamID:      data.SteamID,
	}

	if exp, err := TokenExpiry(data.AccessToken); err == nil {
		session.AccessExpiry = exp
	}
	if exp, err := TokenExpiry(data.RefreshToken); err == nil {
		session.RefreshExpiry = exp
	}

	for _, cookie := range data.Cookies {
		if value, ok := strings.CutPrefix(cookie, "sessionid="); ok {
			session.SessionID, _, _ = strings.Cut(value, ";")
			break
		}
	}
	return session
}
