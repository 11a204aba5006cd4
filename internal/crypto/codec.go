package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/semaphore"
)

const (
	ivLength   = 12
	saltLength = 16
	keyLength  = 32

	scryptN = 32768
	scryptR = 8
	scryptP = 1

	legacyIterations = 50000
	legacyKeyLength  = 32

	fieldSeparator = "/"
	fieldCount     = 4
)

// AccountCodec implements SecretCodec using AES-256-GCM with a
// scrypt-derived key. Key derivation is deliberately expensive, so
// concurrent derivations are bounded by a semaphore sized to the
// number of CPUs.
type AccountCodec struct {
	kdfSlots *semaphore.Weighted
}

func NewAccountCodec() *AccountCodec {
	return &AccountCodec{
		kdfSlots: semaphore.NewWeighted(int64(runtime.NumCPU())),
	}
}

func (c *AccountCodec) Encode(ctx context.Context, data any, passkey string) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	if passkey == "" {
		return string(plaintext), nil
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, err := c.deriveKey(ctx, passkey, salt)
	if err != nil {
		return "", err
	}

	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, iv, plaintext, nil)
	// Seal appends the tag after the ciphertext; the file format keeps
	// them in separate fields.
	tagStart := len(sealed) - aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	fields := []string{
		hex.EncodeToString(iv),
		hex.EncodeToString(salt),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}
	return strings.Join(fields, fieldSeparator), nil
}

func (c *AccountCodec) Decode(ctx context.Context, content []byte, passkey string, target any) error {
	fields := strings.Split(string(content), fieldSeparator)

	if passkey == "" {
		if err := json.Unmarshal(content, target); err == nil {
			return nil
		}
		if len(fields) == fieldCount {
			return fmt.Errorf("content is encrypted and no passkey is set: %w", ErrDecryptionFailed)
		}
		return ErrMalformedData
	}

	if len(fields) != fieldCount {
		// Encryption may have been enabled after this record was
		// written; plain JSON is still acceptable.
		if err := json.Unmarshal(content, target); err == nil {
			return nil
		}
		return ErrMalformedData
	}

	iv, err := hex.DecodeString(fields[0])
	if err != nil || len(iv) != ivLength {
		return ErrMalformedData
	}
	salt, err := hex.DecodeString(fields[1])
	if err != nil || len(salt) != saltLength {
		return ErrMalformedData
	}
	tag, err := hex.DecodeString(fields[2])
	if err != nil {
		return ErrMalformedData
	}
	ciphertext, err := hex.DecodeString(fields[3])
	if err != nil {
		return ErrMalformedData
	}

	key, err := c.deriveKey(ctx, passkey, salt)
	if err != nil {
		return err
	}

	aead, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return ErrDecryptionFailed
	}

	if err := json.Unmarshal(plaintext, target); err != nil {
		return ErrMalformedData
	}
	return nil
}

func (c *AccountCodec) DecodeLegacy(ctx context.Context, encrypted string, password, saltB64, ivB64 string, target any) error {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return ErrMalformedData
	}
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return ErrMalformedData
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return ErrMalformedData
	}
	if len(iv) != aes.BlockSize || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return ErrMalformedData
	}

	if err := c.kdfSlots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire key derivation slot: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, legacyIterations, legacyKeyLength, sha1.New)
	c.kdfSlots.Release(1)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = stripPKCS7(plaintext)
	if err != nil {
		return ErrDecryptionFailed
	}
	if err := json.Unmarshal(plaintext, target); err != nil {
		// CBC has no integrity check, so a wrong password usually
		// surfaces here rather than in unpadding.
		return ErrDecryptionFailed
	}
	return nil
}

func (c *AccountCodec) deriveKey(ctx context.Context, passkey string, salt []byte) ([]byte, error) {
	if err := c.kdfSlots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire key derivation slot: %w", err)
	}
	defer c.kdfSlots.Release(1)

	key, err := scrypt.Key([]byte(passkey), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}

func stripPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrMalformedData
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(data) {
		return nil, ErrDecryptionFailed
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, ErrDecryptionFailed
		}
	}
	return data[:len(data)-pad], nil
}
