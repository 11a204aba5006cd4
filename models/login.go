package models

// LoginStatus labels the phase a login attempt is reporting. Every outward
// notification from the session manager carries exactly one of these.
type LoginStatus string

const (
	// StatusConverting is emitted when a refresh token is being exchanged
	// for a fresh access token.
	StatusConverting LoginStatus = "Converting"

	// StatusNeed2FA is emitted when the provider requires a guard action
	// before the login can complete.
	StatusNeed2FA LoginStatus = "Need2FA"

	// StatusLoginSuccess is emitted exactly once per successful attempt.
	StatusLoginSuccess LoginStatus = "LoginSuccess"

	// StatusFailed is emitted on credential or guard-code rejection.
	StatusFailed LoginStatus = "Failed"

	// StatusTimeout is emitted when the attempt's wall-clock deadline
	// elapses.
	StatusTimeout LoginStatus = "Timeout"

	// StatusCancelled is emitted when the attempt is cancelled locally.
	StatusCancelled LoginStatus = "Cancelled"
)

// GuardAction is one verification action the provider will accept while a
// login waits for two-factor input.
type GuardAction struct {
	// Type is the provider's action code (e.g. email code, device code).
	Type int `json:"type"`

	// Detail carries an action-specific hint such as a masked email
	// address.
	Detail string `json:"detail,omitempty"`
}

// LoginOptions are the inputs of one login attempt. Exactly one of Password
// or RefreshToken must be set; GuardCode may accompany either.
type LoginOptions struct {
	// AccountName selects the account the attempt belongs to. Required.
	AccountName string `json:"account_name"`

	// Password starts a credential login when set.
	Password string `json:"password,omitempty"`

	// RefreshToken starts a token-refresh login when set.
	RefreshToken string `json:"refresh_token,omitempty"`

	// GuardCode is a pre-supplied two-factor code, typically generated
	// from the account's shared secret before the attempt starts.
	GuardCode string `json:"guard_code,omitempty"`
}

// LoginData is the payload of a LoginSuccess event. The caller persists these
// fields into the vault record's session sub-object.
type LoginData struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	SteamID      string   `json:"steamid"`
	AccountName  string   `json:"account_name"`
	Cookies      []string `json:"cookies"`
}

// LoginEvent is the single discriminated notification shape used for every
// outward message of the session manager.
type LoginEvent struct {
	// AccountName identifies which account the event belongs to.
	AccountName string `json:"account_name"`

	// ResultCode is the platform status code of the transition.
	ResultCode EResult `json:"result_code"`

	// Status labels the phase being reported.
	Status LoginStatus `json:"status"`

	// Data is set only on StatusLoginSuccess.
	Data *LoginData `json:"data,omitempty"`

	// ErrorMessage is a human-readable failure description.
	ErrorMessage string `json:"error_message,omitempty"`

	// ValidActions lists acceptable guard actions on StatusNeed2FA.
	ValidActions []GuardAction `json:"valid_actions,omitempty"`
}
