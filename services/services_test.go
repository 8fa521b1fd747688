package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/ai"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

var (
	admin    = access.Resolved(access.Identity{UID: "admin-1", Email: "admin@shaaban.test"}, access.RoleAdmin)
	customer = access.Resolved(access.Identity{UID: "cust-1", Email: "amina@shaaban.test", DisplayName: "Amina"}, access.RoleCustomer)
	other    = access.Resolved(access.Identity{UID: "cust-2", Email: "juma@shaaban.test"}, access.RoleCustomer)
	guest    = access.Resolved(access.Identity{UID: "anon-1", Anonymous: true}, access.RoleCustomer)
)

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) Generate(context.Context, ai.Request) (string, error) {
	return f.text, f.err
}

func seedProduct(t *testing.T, st store.Store, id string, p models.Product) {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	}
	require.NoError(t, st.Set(context.Background(), store.Products, id, p))
}

func countDocs(t *testing.T, st store.Store, collection string) int64 {
	t.Helper()
	n, err := st.Count(context.Background(), store.Query{Collection: collection})
	require.NoError(t, err)
	return n
}

func TestValidationMessagesUseJSONNames(t *testing.T) {
	err := check(models.ContactRequest{Name: "A", Email: "nope", Message: "short"})
	fields, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"name":    "must be at least 2 characters",
		"email":   "must be a valid email address",
		"message": "must be at least 10 characters",
	}, fields)

	err = check(models.ReviewRequest{Rating: 6, Message: "Lovely sofa, great service"})
	fields, ok = AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "must be 5 or less", fields["rating"])

	assert.NoError(t, check(models.NewsletterRequest{Email: "a@b.co"}))
	assert.False(t, IsValidation(errors.New("boom")))
}

func TestRoleRequirements(t *testing.T) {
	assert.ErrorIs(t, requireIdentity(access.Guest()), ErrUnauthenticated)
	assert.NoError(t, requireIdentity(guest))
	assert.ErrorIs(t, requireSignedIn(guest), ErrUnauthenticated)
	assert.NoError(t, requireSignedIn(customer))
	assert.ErrorIs(t, requireAdmin(customer), ErrPermissionDenied)
	assert.NoError(t, requireAdmin(admin))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	seedProduct(t, m, "p1", models.Product{Name: "Sofa"})
	require.NoError(t, m.Set(ctx, store.Orders, "o1", models.Order{Status: models.StatusPending, Total: 100}))
	require.NoError(t, m.Set(ctx, store.Orders, "o2", models.Order{Status: models.StatusDelivered, Total: 250}))
	require.NoError(t, m.Set(ctx, store.Users, "u1", models.UserProfile{Email: "a@b.co"}))

	svc := NewStatsService(m)
	_, err := svc.Get(ctx, customer)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	stats, err := svc.Get(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalProducts: 1, TotalOrders: 2, TotalUsers: 1, PendingOrders: 1, DeliveredRevenue: 250}, stats)
}
