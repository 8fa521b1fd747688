package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type fakeVerifier struct {
	profile GoogleProfile
	err     error
}

func (f fakeVerifier) Verify(context.Context, string) (GoogleProfile, error) {
	return f.profile, f.err
}

func newService(m store.Store, v TokenVerifier) *Service {
	return NewService(m, v).WithCost(bcrypt.MinCost)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer(testKey, time.Hour)
	require.NoError(t, err)

	id := access.Identity{UID: "u1", Email: "a@b.co", DisplayName: "Amina", PhotoURL: "http://p", Anonymous: false}
	token, exp, err := issuer.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	got, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	anon := access.Identity{UID: "guest", Anonymous: true}
	token, _, err = issuer.Issue(anon)
	require.NoError(t, err)
	got, err = issuer.Parse(token)
	require.NoError(t, err)
	assert.True(t, got.Anonymous)
}

func TestTokenRejectsTamperedAndExpired(t *testing.T) {
	issuer, err := NewTokenIssuer(testKey, time.Hour)
	require.NoError(t, err)
	token, _, err := issuer.Issue(access.Identity{UID: "u1"})
	require.NoError(t, err)

	tampered := token[:len(token)-4] + strings.Repeat("A", 4)
	_, err = issuer.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenIssuer([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenIssuer([]byte("short"), time.Hour)
	assert.Error(t, err)
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newService(m, nil)

	id, err := svc.SignUp(ctx, " Amina@Example.com ", "secret1", "Amina")
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", id.Email)
	assert.Equal(t, "Amina", id.DisplayName)
	assert.False(t, id.Anonymous)

	doc, err := m.Get(ctx, store.Users, id.UID)
	require.NoError(t, err)
	var profile models.UserProfile
	require.NoError(t, doc.DataTo(&profile))
	assert.Equal(t, "amina@example.com", profile.Email)
	assert.False(t, profile.CreatedAt.IsZero())

	_, err = svc.SignUp(ctx, "amina@example.com", "another1", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.SignUp(ctx, "short@example.com", "123", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.SignIn(ctx, "AMINA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id.UID, got.UID)
}

func TestSignInFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newService(store.NewMemory(), nil)
	_, err := svc.SignUp(ctx, "user@example.com", "secret1", "")
	require.NoError(t, err)

	_, wrongPassword := svc.SignIn(ctx, "user@example.com", "nope-nope")
	_, unknownEmail := svc.SignIn(ctx, "ghost@example.com", "secret1")
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestGoogleSignIn(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	v := fakeVerifier{profile: GoogleProfile{Subject: "g-123", Email: "Juma@Gmail.com", EmailVerified: true, Name: "Juma", Picture: "http://pic"}}
	svc := newService(m, v)

	first, err := svc.SignInWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "g-123", first.UID)
	assert.Equal(t, "juma@gmail.com", first.Email)
	assert.Equal(t, "Juma", first.DisplayName)

	again, err := svc.SignInWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, first.UID, again.UID)

	// a password account keeps its uid when the same email signs in with Google
	pw, err := svc.SignUp(ctx, "linked@example.com", "secret1", "")
	require.NoError(t, err)
	svc.google = fakeVerifier{profile: GoogleProfile{Subject: "g-999", Email: "linked@example.com", EmailVerified: true, Name: "Linked"}}
	linked, err := svc.SignInWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, pw.UID, linked.UID)
	assert.Equal(t, "Linked", linked.DisplayName)

	// a google-only account cannot sign in with a password
	_, err = svc.SignIn(ctx, "juma@gmail.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	svc.google = fakeVerifier{err: errors.New("bad token")}
	_, err = svc.SignInWithGoogle(ctx, "token")
	assert.Error(t, err)
}

func TestGoogleSignInNeverLinksUnverifiedEmail(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newService(m, nil)

	owner, err := svc.SignUp(ctx, "owner@shop.test", "secret1", "Owner")
	require.NoError(t, err)

	svc.google = fakeVerifier{profile: GoogleProfile{Subject: "other-sub", Email: "owner@shop.test", Name: "Other"}}
	other, err := svc.SignInWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.NotEqual(t, owner.UID, other.UID)
	assert.Equal(t, "other-sub", other.UID)
	assert.Empty(t, other.Email)

	doc, err := m.Get(ctx, store.Credentials, "owner@shop.test")
	require.NoError(t, err)
	var cred models.Credential
	require.NoError(t, doc.DataTo(&cred))
	assert.Equal(t, owner.UID, cred.UID)

	again, err := svc.SignIn(ctx, "owner@shop.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, owner.UID, again.UID)
}

func TestConcurrentSignUpsClaimEmailOnce(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := newService(m, nil)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SignUp(ctx, "race@example.com", "secret1", "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrEmailTaken)
	}
	assert.Equal(t, 1, ok)
	n, err := m.Count(ctx, store.Query{Collection: store.Users})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSignInAnonymously(t *testing.T) {
	m := store.NewMemory()
	svc := newService(m, nil)
	a := svc.SignInAnonymously(context.Background())
	b := svc.SignInAnonymously(context.Background())
	assert.True(t, a.Anonymous)
	assert.NotEqual(t, a.UID, b.UID)

	n, err := m.Count(context.Background(), store.Query{Collection: store.Users})
	require.NoError(t, err)
	assert.Zero(t, n)
}
