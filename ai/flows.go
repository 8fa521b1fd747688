package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"shaaban-furniture-backend/models"
)

const (
	ChatFallback     = "I'm sorry, I'm having a little trouble right now. Please try again in a moment."
	InsightsFallback = "Could not generate insights at this time. Please try again later."
)

// Catalog is what the chat assistant knows about the store.
type Catalog struct {
	Store      models.StoreInfo
	Categories []models.Category
	Products   []models.Product
}

type ChatInput struct {
	History []Message
	Message string
}

type RecommendationInput struct {
	ViewedProductIDs []string
	CartProductIDs   []string
}

// Assistant runs the prompt flows against a Generator.
type Assistant struct {
	gen    Generator
	logger *log.Logger
}

func NewAssistant(gen Generator, logger *log.Logger) *Assistant {
	if gen == nil {
		gen = Disabled{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Assistant{gen: gen, logger: logger}
}

func joinOrNA(values []string) string {
	if len(values) == 0 {
		return "N/A"
	}
	return strings.Join(values, ", ")
}

// ChatSystemPrompt inlines the store details and the whole catalog.
func ChatSystemPrompt(c Catalog) string {
	var b strings.Builder
	name := c.Store.Name
	if name == "" {
		name = "our store"
	}
	fmt.Fprintf(&b, "You are a friendly and helpful customer service chatbot for %q, an online furniture store", name)
	if c.Store.Location != "" {
		fmt.Fprintf(&b, " in %s", c.Store.Location)
	}
	b.WriteString(".\nYour goal is to assist users with their questions about products, orders, and the store. Be conversational and welcoming.\n\n")
	b.WriteString("Keep your responses concise and to the point.\n\n")
	if c.Store.Phone != "" {
		fmt.Fprintf(&b, "The contact phone number is %s", c.Store.Phone)
		if c.Store.WhatsApp != "" {
			b.WriteString(" (also available on WhatsApp)")
		}
		b.WriteString(".\n")
	}
	if c.Store.Email != "" {
		fmt.Fprintf(&b, "The email is %s.\n", c.Store.Email)
	}
	b.WriteString("Custom orders can be discussed via WhatsApp.\n\n")

	b.WriteString("Here is the store's product catalog:\n---\n")
	cat := models.Catalog{Store: c.Store, Categories: c.Categories}
	for _, p := range c.Products {
		fmt.Fprintf(&b, "ID: %s\nName: %s\nDescription: %s\nPrice: %s\n", p.ID, p.Name, p.Description, models.FormatTZS(p.EffectivePrice()))
		fmt.Fprintf(&b, "Category: %s\nIn Stock: %d\nMaterials: %s\nSizes: %s\n\n",
			cat.CategoryName(p.Category), p.Stock, joinOrNA(p.Materials), joinOrNA(p.Sizes))
	}
	b.WriteString("---\n\n")

	names := make([]string, len(c.Categories))
	for i, category := range c.Categories {
		names[i] = category.Name
	}
	fmt.Fprintf(&b, "Available categories: %s.\n", strings.Join(names, ", "))
	return b.String()
}

// Chat answers the next user message. Failures yield ChatFallback.
func (a *Assistant) Chat(ctx context.Context, in ChatInput, catalog Catalog) string {
	reply, err := a.gen.Generate(ctx, Request{
		System:  ChatSystemPrompt(catalog),
		History: in.History,
		Prompt:  in.Message,
	})
	if err != nil {
		a.logger.Printf("chat generation failed: %v", err)
		return ChatFallback
	}
	return reply
}

func recommendationPrompt(in RecommendationInput, catalog []models.Product) string {
	var b strings.Builder
	b.WriteString("You are an expert furniture stylist. Based on the products a user has viewed and the products in their cart, recommend other products that match their style.\n\n")
	fmt.Fprintf(&b, "Viewed Product IDs: %s\n", strings.Join(in.ViewedProductIDs, ","))
	fmt.Fprintf(&b, "Cart Product IDs: %s\n\n", strings.Join(in.CartProductIDs, ","))
	b.WriteString("Catalog:\n")
	for _, p := range catalog {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", p.ID, p.Name, p.Category)
	}
	b.WriteString("\nReturn a JSON array of product IDs that would be a good fit for the user. Only suggest product IDs from our existing product catalog, do not invent new IDs.\n")
	b.WriteString("Products already in the cart or recently viewed should not be included in recommendations.\n")
	b.WriteString("Consider the user's taste and aesthetic preferences when choosing recommendations, with a focus on products that complement the existing selections.")
	return b.String()
}

// Recommend asks for product ids and keeps only known ones that are not
// already viewed or in the cart, without duplicates.
func (a *Assistant) Recommend(ctx context.Context, in RecommendationInput, catalog []models.Product) ([]string, error) {
	text, err := a.gen.Generate(ctx, Request{Prompt: recommendationPrompt(in, catalog), JSON: true})
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	ids, err := ParseIDList(text)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	return FilterIDs(ids, catalog, in.ViewedProductIDs, in.CartProductIDs), nil
}

// ParseIDList reads a JSON array of strings, tolerating code fences and
// surrounding prose.
func ParseIDList(text string) ([]string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, errors.New("no JSON array in model output")
	}
	var ids []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &ids); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	return ids, nil
}

// FilterIDs drops unknown, excluded and repeated ids, keeping order.
func FilterIDs(ids []string, catalog []models.Product, exclude ...[]string) []string {
	known := make(map[string]bool, len(catalog))
	for _, p := range catalog {
		known[p.ID] = true
	}
	skip := make(map[string]bool)
	for _, list := range exclude {
		for _, id := range list {
			skip[id] = true
		}
	}
	out := []string{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if !known[id] || skip[id] {
			continue
		}
		skip[id] = true
		out = append(out, id)
	}
	return out
}

func insightsPrompt(r models.Report) (string, error) {
	weekly, err := json.Marshal(r.WeeklySales)
	if err != nil {
		return "", err
	}
	statuses, err := json.Marshal(r.OrderStatusCounts)
	if err != nil {
		return "", err
	}
	categories, err := json.Marshal(r.CategoryRevenue)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("You are a business intelligence analyst for an online furniture store. Your task is to analyze the following sales data and provide actionable insights.\n\n")
	b.WriteString("The currency is Tanzanian Shillings (TZS).\n\n")
	b.WriteString("**Data Overview:**\n")
	fmt.Fprintf(&b, "- Total Revenue (from delivered orders): %d TZS\n", r.TotalRevenue)
	fmt.Fprintf(&b, "- Weekly Sales (last 8 weeks): %s\n", weekly)
	fmt.Fprintf(&b, "- Order Status Distribution: %s\n", statuses)
	fmt.Fprintf(&b, "- Revenue by Category: %s\n\n", categories)
	b.WriteString("**Analysis Task:**\n")
	b.WriteString("Based on the data provided, generate a concise, bulleted list of key insights and actionable recommendations. Each point should start with a `*`. Focus on:\n")
	b.WriteString("- Sales trends (e.g., growth, decline).\n")
	b.WriteString("- Top-performing categories and potential opportunities.\n")
	b.WriteString("- Order fulfillment efficiency (based on status distribution).\n")
	b.WriteString("- Suggestions for marketing, inventory management, or product strategy.\n\n")
	b.WriteString("Keep the insights clear and easy to understand for a business owner.\n")
	return b.String(), nil
}

// Insights returns the model's analysis of r and its bullet points.
// Failures yield InsightsFallback as a single point.
func (a *Assistant) Insights(ctx context.Context, r models.Report) (string, []string) {
	prompt, err := insightsPrompt(r)
	if err == nil {
		var text string
		text, err = a.gen.Generate(ctx, Request{Prompt: prompt})
		if err == nil {
			return text, SplitBullets(text)
		}
	}
	a.logger.Printf("report insights failed: %v", err)
	return InsightsFallback, []string{InsightsFallback}
}

// SplitBullets splits "* point" lines into points. Lines that do not start
// a bullet continue the previous point; bold markers are removed.
func SplitBullets(text string) []string {
	var points []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		bullet := strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "- ") ||
			(strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "**"))
		if bullet {
			line = line[1:]
		}
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}
		if bullet || len(points) == 0 {
			points = append(points, line)
			continue
		}
		points[len(points)-1] += " " + line
	}
	return points
}
