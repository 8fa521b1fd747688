package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleProfile is what a verified Google ID token tells us.
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// TokenVerifier checks a federated ID token.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (GoogleProfile, error)
}

// GoogleVerifier validates Google ID tokens against the OAuth client id.
type GoogleVerifier struct {
	ClientID string
}

func (g GoogleVerifier) Verify(ctx context.Context, rawToken string) (GoogleProfile, error) {
	if g.ClientID == "" {
		return GoogleProfile{}, errors.New("google sign-in is not configured")
	}
	payload, err := idtoken.Validate(ctx, rawToken, g.ClientID)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claim := func(key string) string {
		s, _ := payload.Claims[key].(string)
		return s
	}
	return GoogleProfile{
		Subject:       payload.Subject,
		Email:         claim("email"),
		EmailVerified: verified(payload.Claims["email_verified"]),
		Name:          claim("name"),
		Picture:       claim("picture"),
	}, nil
}

// verified reads the email_verified claim, which some issuers send as a string.
func verified(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}
