package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/ai"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/services"
)

// Chat answers a storefront question with the whole catalog as context.
// Model failures come back as the fallback reply, never as an error.
func (ctrl *Controller) Chat(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var req models.ChatRequest
	if !ctrl.bind(c, &req) {
		return
	}
	products, err := ctrl.Products.List(ctx, services.ProductFilter{})
	if err != nil {
		ctrl.logf("chat: catalog unavailable: %v", err)
		c.JSON(http.StatusOK, gin.H{"response": ai.ChatFallback})
		return
	}
	history := make([]ai.Message, len(req.History))
	for i, turn := range req.History {
		history[i] = ai.Message{Role: turn.Role, Text: turn.Content}
	}
	reply := ctrl.Assistant.Chat(ctx, ai.ChatInput{History: history, Message: req.Message}, ai.Catalog{
		Store:      ctrl.Catalog.Store,
		Categories: ctrl.Catalog.Categories,
		Products:   products,
	})
	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// Recommendations suggests products to show next to the current one.
func (ctrl *Controller) Recommendations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var req models.RecommendationRequest
	if !ctrl.bind(c, &req) {
		return
	}
	products, err := ctrl.Recs.Recommend(ctx, session(c), req.CurrentProductID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": productViews(products)})
}
