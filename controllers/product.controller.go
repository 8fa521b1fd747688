package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/services"
)

func productViews(products []models.Product) []models.ProductView {
	out := make([]models.ProductView, len(products))
	for i, p := range products {
		out[i] = p.View()
	}
	return out
}

// GetProducts lists the catalog, optionally by category or featured only.
func (ctrl *Controller) GetProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := services.ProductFilter{Category: c.Query("category")}
	filter.Featured, _ = strconv.ParseBool(c.Query("featured"))
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	products, err := ctrl.Products.List(ctx, filter)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": productViews(products)})
}

// GetProduct returns one product and records it in the caller's viewed history.
func (ctrl *Controller) GetProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	product, err := ctrl.Products.Get(ctx, c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	ctrl.Recs.RecordView(session(c), product.ID)
	c.JSON(http.StatusOK, gin.H{"product": product.View()})
}

// CreateProduct adds a product. Admin only.
func (ctrl *Controller) CreateProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var req models.ProductRequest
	if !ctrl.bind(c, &req) {
		return
	}
	product, err := ctrl.Products.Create(ctx, session(c), req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product.View()})
}

// UpdateProduct replaces a product's fields. Admin only.
func (ctrl *Controller) UpdateProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var req models.ProductRequest
	if !ctrl.bind(c, &req) {
		return
	}
	product, err := ctrl.Products.Update(ctx, session(c), c.Param("id"), req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product.View()})
}

// DeleteProduct removes a product and its hosted images. Admin only.
func (ctrl *Controller) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ctrl.Products.Delete(ctx, session(c), c.Param("id")); err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// StreamProducts pushes the catalog as server-sent events on every change.
func (ctrl *Controller) StreamProducts(c *gin.Context) {
	live := ctrl.Products.NewLive()
	streamLive(c, ctrl, live, false, productViews)
}
