package crypto

import "context"

// SecretCodec converts account records to and from their on-disk form.
// An empty passkey means records are stored as plain JSON.
type SecretCodec interface {
	// Encode serializes data to JSON and, when passkey is non-empty,
	// encrypts it into the iv/salt/tag/ciphertext hex form.
	Encode(ctx context.Context, data any, passkey string) (string, error)
	// Decode reverses Encode into target. It returns ErrDecryptionFailed
	// when encrypted content cannot be opened with the given passkey and
	// ErrMalformedData when content fits neither the plain nor the
	// encrypted layout.
	Decode(ctx context.Context, content []byte, passkey string, target any) error
	// DecodeLegacy decrypts a record produced by the old desktop
	// authenticator format. iv and salt come from the manifest entry,
	// base64 encoded.
	DecodeLegacy(ctx context.Context, encrypted string, password, saltB64, ivB64 string, target any) error
}
