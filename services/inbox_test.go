package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

func TestContactMessages(t *testing.T) {
	ctx := context.Background()
	svc := NewInboxService(store.NewMemory(), nil)

	_, err := svc.Contact(ctx, models.ContactRequest{Name: "Juma", Email: "juma@example.com", Message: "Hi"})
	assert.True(t, IsValidation(err))

	msg, err := svc.Contact(ctx, models.ContactRequest{Name: "Juma", Email: "juma@example.com", Message: "Do you deliver to Pemba?"})
	require.NoError(t, err)
	assert.False(t, msg.IsRead)

	_, err = svc.Messages(ctx, customer)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	read, err := svc.ToggleRead(ctx, admin, msg.ID)
	require.NoError(t, err)
	assert.True(t, read)
	read, err = svc.ToggleRead(ctx, admin, msg.ID)
	require.NoError(t, err)
	assert.False(t, read)

	require.NoError(t, svc.DeleteMessage(ctx, admin, msg.ID))
	msgs, err := svc.Messages(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSubscribeIsIdempotentPerEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewInboxService(store.NewMemory(), nil)

	created, err := svc.Subscribe(ctx, models.NewsletterRequest{Email: "Fatma@Example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Subscribe(ctx, models.NewsletterRequest{Email: " fatma@example.com "})
	require.NoError(t, err)
	assert.False(t, created)

	subs, err := svc.Subscribers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "fatma@example.com", subs[0].ID)

	require.NoError(t, svc.DeleteSubscriber(ctx, admin, subs[0].ID))
	subs, err = svc.Subscribers(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
