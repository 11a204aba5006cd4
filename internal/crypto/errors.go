package crypto

import "errors"

var (
	// ErrDecryptionFailed is returned for any failure to open encrypted
	// content. The message never distinguishes a wrong passkey from
	// corrupted data.
	ErrDecryptionFailed = errors.New("unable to decrypt record with the provided passkey")
	// ErrMalformedData is returned when content matches neither the plain
	// JSON layout nor the four-field encrypted layout.
	ErrMalformedData = errors.New("record data is malformed")
)
