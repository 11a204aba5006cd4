package models

import "time"

// ConfirmationHistoryEntry is one row of the local confirmation history:
// which pending action was accepted or cancelled, for which account, and how
// the platform answered.
type ConfirmationHistoryEntry struct {
	ID             int64            `json:"id"`
	AccountName    string           `json:"account_name"`
	ConfirmationID string           `json:"confirmation_id"`
	Type           ConfirmationType `json:"type"`
	Headline       string           `json:"headline"`
	Action         string           `json:"action"`
	ResultCode     EResult          `json:"result_code"`
	CreatedAt      time.Time        `json:"created_at"`
}
