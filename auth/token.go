package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/o1egl/paseto"

	"shaaban-furniture-backend/access"
)

const tokenFooter = "shaaban-furniture"

// TokenIssuer mints and checks PASETO v2 local tokens carrying an Identity.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(key []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(key) != 32 {
		return nil, errors.New("paseto key must be 32 bytes")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue returns a token for id and its expiry.
func (t *TokenIssuer) Issue(id access.Identity) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	jsonToken := paseto.JSONToken{
		Subject:    id.UID,
		IssuedAt:   now,
		Expiration: exp,
	}
	jsonToken.Set("email", id.Email)
	jsonToken.Set("name", id.DisplayName)
	jsonToken.Set("photo", id.PhotoURL)
	jsonToken.Set("anon", strconv.FormatBool(id.Anonymous))

	token, err := paseto.NewV2().Encrypt(t.key, jsonToken, tokenFooter)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encrypt token: %w", err)
	}
	return token, exp, nil
}

// Parse verifies token and returns the identity it carries.
func (t *TokenIssuer) Parse(token string) (access.Identity, error) {
	var jsonToken paseto.JSONToken
	var footer string
	if err := paseto.NewV2().Decrypt(token, t.key, &jsonToken, &footer); err != nil {
		return access.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if footer != tokenFooter {
		return access.Identity{}, fmt.Errorf("%w: unexpected footer", ErrInvalidToken)
	}
	if err := jsonToken.Validate(paseto.ValidAt(t.now())); err != nil {
		return access.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if jsonToken.Subject == "" {
		return access.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	anon, _ := strconv.ParseBool(jsonToken.Get("anon"))
	return access.Identity{
		UID:         jsonToken.Subject,
		Email:       jsonToken.Get("email"),
		DisplayName: jsonToken.Get("name"),
		PhotoURL:    jsonToken.Get("photo"),
		Anonymous:   anon,
	}, nil
}
