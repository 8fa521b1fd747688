// Package auth signs users in and out. Email accounts keep a bcrypt hash in
// the credentials collection; every identity is carried between requests in
// a PASETO token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidInput       = errors.New("invalid sign-up details")
)

const (
	providerPassword = "password"
	providerGoogle   = "google"
	minPasswordLen   = 6
)

type Service struct {
	store  store.Store
	google TokenVerifier
	cost   int
	now    func() time.Time
}

func NewService(st store.Store, google TokenVerifier) *Service {
	return &Service{store: st, google: google, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithCost sets the bcrypt cost, mostly so tests stay fast.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (access.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return access.Identity{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return access.Identity{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	taken, err := store.Exists(ctx, s.store, store.Credentials, email)
	if err != nil {
		return access.Identity{}, err
	}
	if taken {
		return access.Identity{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return access.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	uid := uuid.NewString()
	cred := models.Credential{UID: uid, PasswordHash: string(hash), Provider: providerPassword, CreatedAt: now}
	if err := s.store.Create(ctx, store.Credentials, email, cred); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return access.Identity{}, ErrEmailTaken
		}
		return access.Identity{}, err
	}
	profile := models.UserProfile{
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if err := s.store.Set(ctx, store.Users, uid, profile); err != nil {
		return access.Identity{}, err
	}
	return identityOf(uid, profile), nil
}

// SignIn fails with ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (s *Service) SignIn(ctx context.Context, email, password string) (access.Identity, error) {
	email = normalizeEmail(email)
	doc, err := s.store.Get(ctx, store.Credentials, email)
	if errors.Is(err, store.ErrNotFound) {
		return access.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return access.Identity{}, err
	}
	var cred models.Credential
	if err := doc.DataTo(&cred); err != nil {
		return access.Identity{}, err
	}
	if cred.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return access.Identity{}, ErrInvalidCredentials
	}

	profile, err := s.touchProfile(ctx, cred.UID, models.UserProfile{Email: email})
	if err != nil {
		return access.Identity{}, err
	}
	return identityOf(cred.UID, profile), nil
}

// SignInWithGoogle verifies idToken and signs in the matching account,
// creating it on first use. A verified email already registered with a
// password keeps its uid. An unverified email is never linked and the
// account is keyed by the Google subject alone.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (access.Identity, error) {
	if s.google == nil {
		return access.Identity{}, errors.New("google sign-in is not configured")
	}
	gp, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return access.Identity{}, err
	}
	if gp.Subject == "" {
		return access.Identity{}, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	uid := gp.Subject
	email := ""
	if gp.EmailVerified {
		email = normalizeEmail(gp.Email)
	}
	if email != "" {
		if uid, err = s.linkGoogle(ctx, email, gp.Subject); err != nil {
			return access.Identity{}, err
		}
	}

	profile, err := s.touchProfile(ctx, uid, models.UserProfile{Email: email, DisplayName: gp.Name, PhotoURL: gp.Picture})
	if err != nil {
		return access.Identity{}, err
	}
	return identityOf(uid, profile), nil
}

// linkGoogle returns the uid registered for email, claiming it for subject
// when the email is new.
func (s *Service) linkGoogle(ctx context.Context, email, subject string) (string, error) {
	cred := models.Credential{UID: subject, Provider: providerGoogle, CreatedAt: s.now()}
	err := s.store.Create(ctx, store.Credentials, email, cred)
	if err == nil {
		return subject, nil
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		return "", err
	}
	doc, err := s.store.Get(ctx, store.Credentials, email)
	if err != nil {
		return "", err
	}
	if err := doc.DataTo(&cred); err != nil {
		return "", err
	}
	return cred.UID, nil
}

// SignInAnonymously returns a fresh identity with no stored profile.
func (s *Service) SignInAnonymously(context.Context) access.Identity {
	return access.Identity{UID: uuid.NewString(), Anonymous: true}
}

// touchProfile stamps lastLoginAt, creating the profile from seed when missing
// and filling empty name and photo from seed.
func (s *Service) touchProfile(ctx context.Context, uid string, seed models.UserProfile) (models.UserProfile, error) {
	now := s.now()
	doc, err := s.store.Get(ctx, store.Users, uid)
	if errors.Is(err, store.ErrNotFound) {
		seed.CreatedAt = now
		seed.LastLoginAt = now
		if err := s.store.Set(ctx, store.Users, uid, seed); err != nil {
			return models.UserProfile{}, err
		}
		return seed, nil
	}
	if err != nil {
		return models.UserProfile{}, err
	}

	var profile models.UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return models.UserProfile{}, err
	}
	fields := map[string]any{"lastLoginAt": now}
	if profile.DisplayName == "" && seed.DisplayName != "" {
		profile.DisplayName = seed.DisplayName
		fields["displayName"] = seed.DisplayName
	}
	if profile.PhotoURL == "" && seed.PhotoURL != "" {
		profile.PhotoURL = seed.PhotoURL
		fields["photoURL"] = seed.PhotoURL
	}
	if err := s.store.Update(ctx, store.Users, uid, fields); err != nil {
		return models.UserProfile{}, err
	}
	profile.LastLoginAt = now
	return profile, nil
}

func identityOf(uid string, p models.UserProfile) access.Identity {
	return access.Identity{UID: uid, Email: p.Email, DisplayName: p.DisplayName, PhotoURL: p.PhotoURL}
}
