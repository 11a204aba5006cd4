// Package totp generates Steam Guard codes and mobile confirmation
// signatures from an account's base64 encoded secrets.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

const (
	// Steam codes are drawn from this alphabet instead of plain digits.
	codeAlphabet = "23456789BCDFGHJKMNPQRTVWXY"
	codeLength   = 5

	// Period is the lifetime of a single guard code in seconds.
	Period = 30
)

// GenerateCode produces the five character guard code for the given
// Unix timestamp.
func GenerateCode(sharedSecret string, timestamp int64) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("decode shared secret: %w", err)
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(timestamp/Period))

	mac := hmac.New(sha1.New, secret)
	mac.Write(counter[:])
	digest := mac.Sum(nil)

	start := digest[19] & 0x0F
	fullcode := uint32(digest[start]&0x7F)<<24 |
		uint32(digest[start+1])<<16 |
		uint32(digest[start+2])<<8 |
		uint32(digest[start+3])

	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[fullcode%uint32(len(codeAlphabet))]
		fullcode /= uint32(len(codeAlphabet))
	}
	return string(code), nil
}

// GenerateConfirmationKey signs a confirmation request for the given
// tag ("list", "detail", "accept" or "reject") at the given Unix
// timestamp.
func GenerateConfirmationKey(identitySecret, tag string, timestamp int64) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(identitySecret)
	if err != nil {
		return "", fmt.Errorf("decode identity secret: %w", err)
	}

	payload := make([]byte, 8, 8+len(tag))
	binary.BigEndian.PutUint64(payload, uint64(timestamp))
	payload = append(payload, tag...)

	mac := hmac.New(sha1.New, secret)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Progress reports how much of the current code's lifetime remains at
// the given Unix timestamp, in percent. It is exactly 100 at the start
// of a window and decreases towards zero.
func Progress(timestamp int64) float64 {
	remaining := Period - timestamp%Period
	return float64(remaining) / Period * 100
}
