package models

// ManifestEntry is one row of the vault index: the mapping from an account
// name to its stored file and, for legacy imports, the externally supplied
// encryption parameters.
type ManifestEntry struct {
	// AccountName is the vault key this entry belongs to.
	AccountName string `json:"account_name"`

	// SteamID mirrors the account's 64-bit identifier for display purposes.
	SteamID string `json:"steamid,omitempty"`

	// Filename is the vault file name relative to the storage directory.
	Filename string `json:"filename"`

	// EncryptionIV is the base64 IV from a legacy import manifest.
	// Empty for files written in the vault's own format, which embeds
	// its parameters in the file content.
	EncryptionIV string `json:"encryption_iv,omitempty"`

	// EncryptionSalt is the base64 salt from a legacy import manifest.
	EncryptionSalt string `json:"encryption_salt,omitempty"`
}
