package models

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SteamIDFromAccessToken extracts the 64-bit account identifier embedded in
// an access token's "sub" (subject) claim.
//
// The token is parsed without signature verification: the client is not the
// token's audience and has no key material to verify it with; it only needs
// the subject id the platform requires as a query parameter on Web API calls.
//
// Returns an error if the token cannot be parsed or the subject claim is
// missing or empty.
func SteamIDFromAccessToken(accessToken string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("error parsing access token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid access token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting subject from access token: %w", err)
	}
	if sub == "" {
		return "", errors.New("empty subject in access token")
	}

	return sub, nil
}

// GuardCode pairs a generated code with how much of its validity window
// remains, as a percentage.
type GuardCode struct {
	Code     string  `json:"code"`
	Progress float64 `json:"progress"`
}

// TokenExpiry extracts the Unix-seconds "exp" claim of a token, again without
// signature verification. Session records keep these values so expiry checks
// never need to re-parse the tokens.
func TokenExpiry(token string) (int64, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return 0, fmt.Errorf("error parsing token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, errors.New("token carries no expiration claim")
	}
	return exp.Unix(), nil
}
