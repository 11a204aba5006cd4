package models

import "encoding/json"

// APIEnvelope is the outer {"response": ...} wrapper every Web API endpoint
// returns. The inner object is kept raw so each caller can decode it into its
// own type.
type APIEnvelope struct {
	Response json.RawMessage `json:"response"`
}

// QueryTimeResponse is the body of the time-query endpoint.
type QueryTimeResponse struct {
	// ServerTime is the platform's current Unix time, in seconds, as a
	// decimal string.
	ServerTime string `json:"server_time"`

	// TryAgainSeconds is the server's hint for when to resynchronize.
	TryAgainSeconds int64 `json:"try_again_seconds"`

	SkewToleranceSeconds int64 `json:"skew_tolerance_seconds,omitempty"`
	LargeTimeJink        int64 `json:"large_time_jink,omitempty"`
}

// AddAuthenticatorResponse is the body returned when an authenticator is
// attached to an account. Its secret material seeds a new vault record.
type AddAuthenticatorResponse struct {
	SharedSecret   string `json:"shared_secret"`
	IdentitySecret string `json:"identity_secret"`
	RevocationCode string `json:"revocation_code"`
	SerialNumber   string `json:"serial_number"`
	TokenGID       string `json:"token_gid"`
	ServerTime     string `json:"server_time"`
	AccountName    string `json:"account_name"`
	SteamID        string `json:"steamid,omitempty"`
	DeviceID       string `json:"device_id,omitempty"`
	URI            string `json:"uri"`
	Status         int    `json:"status"`
	FullyEnrolled  bool   `json:"fully_enrolled,omitempty"`
}

// FinalizeAddAuthenticatorResponse is the body of the enrollment
// finalization call.
type FinalizeAddAuthenticatorResponse struct {
	Success    bool   `json:"success"`
	WantMore   bool   `json:"want_more"`
	ServerTime string `json:"server_time"`
	Status     int    `json:"status"`
}

// AuthenticatorStatusResponse is the body of the status query for an
// account's authenticator enrollment.
type AuthenticatorStatusResponse struct {
	State             int    `json:"state"`
	DeviceID          string `json:"device_identifier"`
	TokenGID          string `json:"token_gid"`
	AuthenticatorType int    `json:"authenticator_type"`
	Version           int    `json:"version"`
}

// RemoveAuthenticatorChallengeResponse is the body of both remove-challenge
// calls. The continue step returns the replacement authenticator's secret
// material when a new token was requested.
type RemoveAuthenticatorChallengeResponse struct {
	Success          bool                      `json:"success"`
	RevocationCode   string                    `json:"revocation_code,omitempty"`
	ReplacementToken *AddAuthenticatorResponse `json:"replacement_token,omitempty"`
}

// Envelope is the normalized result of every confirmation and authenticator
// call: platform result code, transport status, and an optional decoded
// payload. Transport and protocol failures are expressed through this shape,
// never as raw errors escaping to the caller.
type Envelope[T any] struct {
	// ResultCode is the platform status code, taken from the response
	// header when present.
	ResultCode EResult `json:"result_code"`

	// HTTPStatus is the transport status code, zero when the request
	// never reached the server.
	HTTPStatus int `json:"http_status"`

	// Message is a human-readable failure description.
	Message string `json:"message,omitempty"`

	// Payload is the decoded response body on success.
	Payload *T `json:"payload,omitempty"`
}

// OK reports whether the envelope denotes a successful call.
func (e Envelope[T]) OK() bool {
	return e.ResultCode.Succeeded() && e.HTTPStatus >= 200 && e.HTTPStatus < 300
}
