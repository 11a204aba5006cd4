package models

// ConfirmationType describes what kind of pending action a confirmation
// represents.
type ConfirmationType int

const (
	ConfirmationTypeUnknown        ConfirmationType = 0
	ConfirmationTypeTrade          ConfirmationType = 2
	ConfirmationTypeMarketListing  ConfirmationType = 3
	ConfirmationTypeAccountDetails ConfirmationType = 6
)

// Confirmation is a server-side pending action mirrored locally only for the
// duration of a list call. It is never persisted; each listing fetches fresh
// state.
type Confirmation struct {
	// ID identifies the confirmation on the platform side.
	ID string `json:"id"`

	// Nonce is the integrity token that must accompany an accept or
	// cancel request for this confirmation.
	Nonce string `json:"nonce"`

	// Type classifies the pending action (trade, market listing, ...).
	Type ConfirmationType `json:"type"`

	// TypeName is the platform's human-readable type label.
	TypeName string `json:"type_name"`

	// CreatorID links the confirmation to the object that spawned it,
	// e.g. a trade offer id.
	CreatorID string `json:"creator_id"`

	// Headline is the short human-readable summary.
	Headline string `json:"headline"`

	// Summary holds the detail lines shown under the headline.
	Summary []string `json:"summary"`

	// Accept and Cancel are the action button labels ("Accept",
	// "Cancel") supplied by the platform.
	Accept string `json:"accept"`
	Cancel string `json:"cancel"`

	// Icon is the confirmation's icon URL, when the platform sends one.
	Icon string `json:"icon,omitempty"`
}

// ConfirmationList is the decoded body of the confirmations listing endpoint.
type ConfirmationList struct {
	Success       bool           `json:"success"`
	NeedAuth      bool           `json:"needauth,omitempty"`
	Confirmations []Confirmation `json:"conf"`
}

// ConfirmationActionResult is the decoded body of an accept/cancel call.
type ConfirmationActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
