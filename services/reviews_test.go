package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

func TestReviewApprovalPublishesOneCopy(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := NewReviewService(m, nil)

	_, err := svc.Submit(ctx, guest, models.ReviewRequest{Rating: 5, Message: "Beautiful craftsmanship"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	r, err := svc.Submit(ctx, customer, models.ReviewRequest{Rating: 4, Message: "  Beautiful craftsmanship  "})
	require.NoError(t, err)
	assert.Equal(t, "Amina", r.Name)
	assert.Equal(t, models.ReviewPending, r.Status)

	public, err := svc.Public(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, public)

	_, err = svc.Approve(ctx, customer, r.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	pub, err := svc.Approve(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, pub.ID)

	public, err = svc.Public(ctx, 0)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Amina", public[0].Name)
	assert.Equal(t, 4, public[0].Rating)
	assert.Equal(t, "Beautiful craftsmanship", public[0].Message)

	pending, err := svc.Moderation(ctx, admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.ReviewApproved, pending[0].Status)

	_, err = svc.Approve(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), countDocs(t, m, store.ReviewsPublic))
}

func TestReviewRejectAndDelete(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := NewReviewService(m, nil)

	r, err := svc.Submit(ctx, customer, models.ReviewRequest{Rating: 2, Message: "Delivery took too long"})
	require.NoError(t, err)
	require.NoError(t, svc.Reject(ctx, admin, r.ID))
	assert.Zero(t, countDocs(t, m, store.ReviewsPrivate))
	assert.ErrorIs(t, svc.Reject(ctx, admin, r.ID), ErrNotFound)

	r, err = svc.Submit(ctx, customer, models.ReviewRequest{Rating: 5, Message: "Excellent wardrobe"})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, admin, r.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, admin, r.ID))
	assert.Zero(t, countDocs(t, m, store.ReviewsPrivate))
	assert.Zero(t, countDocs(t, m, store.ReviewsPublic))
}

func TestModerationListIsOwnedForCustomers(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	svc := NewReviewService(m, nil)
	_, err := svc.Submit(ctx, customer, models.ReviewRequest{Rating: 5, Message: "Great bed frame"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, other, models.ReviewRequest{Rating: 3, Message: "Okay coffee table"})
	require.NoError(t, err)

	mine, err := svc.Moderation(ctx, customer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "cust-1", mine[0].UserID)

	all, err := svc.Moderation(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
