package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

func TestUserAdminRoleManagement(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	roles := access.NewRoleResolver(m, nil)
	svc := NewUserService(m, roles, nil)
	require.NoError(t, m.Set(ctx, store.Users, "admin-1", models.UserProfile{Email: "admin@shaaban.test"}))
	require.NoError(t, m.Set(ctx, store.Users, "cust-1", models.UserProfile{Email: "amina@shaaban.test"}))
	require.NoError(t, m.Set(ctx, store.Credentials, "amina@shaaban.test", models.Credential{UID: "cust-1", Provider: "password"}))
	require.NoError(t, roles.Grant(ctx, "admin-1"))

	_, err := svc.List(ctx, customer)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.SetAdmin(ctx, admin, "cust-1", true))
	users, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.True(t, u.IsAdmin, u.ID)
	}

	assert.ErrorIs(t, svc.SetAdmin(ctx, admin, "admin-1", false), ErrSelfRevoke)
	assert.ErrorIs(t, svc.SetAdmin(ctx, admin, "ghost", true), ErrNotFound)

	require.NoError(t, svc.SetAdmin(ctx, admin, "cust-1", false))
	assert.False(t, roles.IsAdmin(ctx, "cust-1"))

	assert.ErrorIs(t, svc.Delete(ctx, admin, "admin-1"), ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, admin, "cust-1"))
	assert.Equal(t, int64(1), countDocs(t, m, store.Users))
	assert.Zero(t, countDocs(t, m, store.Credentials))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := NewUserService(m, access.NewRoleResolver(m, nil), nil)
	require.NoError(t, m.Set(ctx, store.Users, "cust-1", models.UserProfile{Email: "amina@shaaban.test"}))

	_, err := svc.UpdateProfile(ctx, guest, models.ProfileRequest{DisplayName: "Anon"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.UpdateProfile(ctx, customer, models.ProfileRequest{PhotoURL: "not a url"})
	assert.True(t, IsValidation(err))

	p, err := svc.UpdateProfile(ctx, customer, models.ProfileRequest{DisplayName: " Amina Said ", PhotoURL: "https://img.example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "Amina Said", p.DisplayName)
	assert.Equal(t, "amina@shaaban.test", p.Email)
	assert.False(t, p.IsAdmin)
}
