package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaaban-furniture-backend/ai"
	"shaaban-furniture-backend/cart"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

func productIDs(ps []models.Product) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}

func newRecommendations(t *testing.T, gen ai.Generator) (*RecommendationService, *cart.Registry) {
	t.Helper()
	m := store.NewMemory()
	seedProduct(t, m, "sofa", models.Product{Name: "Sofa", IsFeatured: true})
	seedProduct(t, m, "bed", models.Product{Name: "Bed", IsFeatured: true})
	seedProduct(t, m, "desk", models.Product{Name: "Desk"})
	seedProduct(t, m, "lamp", models.Product{Name: "Lamp", IsFeatured: true})
	carts := cart.NewRegistry("", nil)
	t.Cleanup(carts.Close)
	return NewRecommendationService(NewProductService(m, nil, nil), carts, ai.NewAssistant(gen, nil), nil), carts
}

func TestRecommendFallsBackToFeatured(t *testing.T) {
	svc, _ := newRecommendations(t, fakeGenerator{err: errors.New("model unavailable")})

	got, err := svc.Recommend(context.Background(), customer, "sofa")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.NotContains(t, productIDs(got), "sofa")
	for _, p := range got {
		assert.True(t, p.IsFeatured, p.ID)
	}
}

func TestRecommendFallsBackWhenNothingUsableIsSuggested(t *testing.T) {
	svc, _ := newRecommendations(t, fakeGenerator{text: `["sofa", "ghost"]`})

	got, err := svc.Recommend(context.Background(), customer, "sofa")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bed", "lamp"}, productIDs(got))
}

func TestRecommendExcludesViewedAndCart(t *testing.T) {
	ctx := context.Background()
	svc, carts := newRecommendations(t, fakeGenerator{text: "```json\n[\"bed\", \"desk\", \"lamp\"]\n```"})
	_, err := carts.Cart("cust-1").Dispatch(ctx, cart.Add(models.Product{ID: "lamp"}, 1))
	require.NoError(t, err)
	svc.RecordView(customer, "bed")

	got, err := svc.Recommend(ctx, customer, "sofa")
	require.NoError(t, err)
	assert.Equal(t, []string{"desk"}, productIDs(got))
	assert.Equal(t, []string{"sofa", "bed"}, carts.History("cust-1").IDs())
}

func TestRecommendFallbackIsCapped(t *testing.T) {
	m := store.NewMemory()
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		seedProduct(t, m, id, models.Product{Name: id, IsFeatured: true})
	}
	carts := cart.NewRegistry("", nil)
	t.Cleanup(carts.Close)
	svc := NewRecommendationService(NewProductService(m, nil, nil), carts, ai.NewAssistant(fakeGenerator{err: errors.New("down")}, nil), nil)

	got, err := svc.Recommend(context.Background(), guest, "a")
	require.NoError(t, err)
	assert.Len(t, got, fallbackRecommendations)
	assert.NotContains(t, productIDs(got), "a")
}
