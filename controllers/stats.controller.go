package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports whether the document store answers.
func (ctrl *Controller) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dbStatus := "connected"
	if p, ok := ctrl.Store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			dbStatus = "disconnected"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  dbStatus,
		"timestamp": time.Now().Unix(),
	})
}

// GetStats returns the admin dashboard counters.
func (ctrl *Controller) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := ctrl.Stats.Get(ctx, session(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetCatalog returns the store details and categories.
func (ctrl *Controller) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"store": ctrl.Catalog.Store, "categories": ctrl.Catalog.Categories})
}
