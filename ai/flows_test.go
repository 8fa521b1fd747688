package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaaban-furniture-backend/models"
)

type fakeGenerator struct {
	reply string
	err   error
	last  Request
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (string, error) {
	f.last = req
	return f.reply, f.err
}

var catalog = []models.Product{
	{ID: "p1", Name: "Zanzibar Chest", Category: "storage", Price: 1250000, Stock: 2, Materials: []string{"Teak", "Brass"}},
	{ID: "p2", Name: "Swahili Bed", Category: "bedroom", Price: 900000, Stock: 1},
	{ID: "p3", Name: "Mvule Table", Category: "dining", Price: 450000},
}

func TestChatSystemPromptInlinesCatalog(t *testing.T) {
	prompt := ChatSystemPrompt(Catalog{
		Store:      models.StoreInfo{Name: "Shaaban Furniture Hub", Location: "Zanzibar, Tanzania", Phone: "+255 686 587 266", WhatsApp: "+255686587266"},
		Categories: []models.Category{{ID: "storage", Name: "Storage"}, {ID: "bedroom", Name: "Bedroom"}},
		Products:   catalog,
	})
	assert.Contains(t, prompt, "Shaaban Furniture Hub")
	assert.Contains(t, prompt, "ID: p1")
	assert.Contains(t, prompt, "Price: 1,250,000 TZS")
	assert.Contains(t, prompt, "Category: Storage")
	assert.Contains(t, prompt, "Materials: Teak, Brass")
	assert.Contains(t, prompt, "Sizes: N/A")
	assert.Contains(t, prompt, "(also available on WhatsApp)")
	assert.Contains(t, prompt, "Available categories: Storage, Bedroom.")
}

func TestChatPassesHistoryAndFallsBack(t *testing.T) {
	gen := &fakeGenerator{reply: "Karibu!"}
	a := NewAssistant(gen, nil)
	history := []Message{{Role: "user", Text: "hi"}, {Role: "model", Text: "hello"}}

	reply := a.Chat(context.Background(), ChatInput{History: history, Message: "do you deliver?"}, Catalog{})
	assert.Equal(t, "Karibu!", reply)
	assert.Equal(t, history, gen.last.History)
	assert.Equal(t, "do you deliver?", gen.last.Prompt)

	gen.err = errors.New("quota")
	assert.Equal(t, ChatFallback, a.Chat(context.Background(), ChatInput{Message: "x"}, Catalog{}))

	assert.Equal(t, ChatFallback, NewAssistant(nil, nil).Chat(context.Background(), ChatInput{Message: "x"}, Catalog{}))
}

func TestRecommendFiltersModelOutput(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n[\"p2\", \"ghost\", \"p1\", \"p3\", \"p3\"]\n```"}
	a := NewAssistant(gen, nil)

	ids, err := a.Recommend(context.Background(), RecommendationInput{ViewedProductIDs: []string{"p1"}}, catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3"}, ids)
	assert.True(t, gen.last.JSON)
	assert.Contains(t, gen.last.Prompt, "Viewed Product IDs: p1")

	gen.reply = "I cannot help with that"
	_, err = a.Recommend(context.Background(), RecommendationInput{}, catalog)
	assert.Error(t, err)

	gen.err = errors.New("down")
	_, err = a.Recommend(context.Background(), RecommendationInput{}, catalog)
	assert.Error(t, err)
}

func TestInsights(t *testing.T) {
	gen := &fakeGenerator{reply: "* Sales grew **20%** week over week\n* Living room leads revenue\n  and should be restocked\n"}
	a := NewAssistant(gen, nil)
	report := models.Report{TotalRevenue: 3000000, OrderStatusCounts: []models.StatusCount{{Status: "pending", Count: 2}}}

	text, points := a.Insights(context.Background(), report)
	assert.Equal(t, gen.reply, text)
	assert.Equal(t, []string{"Sales grew 20% week over week", "Living room leads revenue and should be restocked"}, points)
	assert.Contains(t, gen.last.Prompt, "3000000 TZS")
	assert.Contains(t, gen.last.Prompt, `"status":"pending"`)

	gen.err = errors.New("down")
	text, points = a.Insights(context.Background(), report)
	assert.Equal(t, InsightsFallback, text)
	assert.Equal(t, []string{InsightsFallback}, points)
}

func TestSplitBullets(t *testing.T) {
	assert.Empty(t, SplitBullets("   \n"))
	assert.Equal(t, []string{"one", "two"}, SplitBullets("*one\n*two"))
	assert.Equal(t, []string{"Summary: fine", "a"}, SplitBullets("**Summary:** fine\n- a"))
	assert.False(t, strings.Contains(strings.Join(SplitBullets("* **bold** point"), ""), "*"))
}
