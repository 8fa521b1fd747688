package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/cart"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/services"
)

func cartBody(s cart.State) gin.H {
	items := s.Items
	if items == nil {
		items = []cart.Item{}
	}
	return gin.H{"items": items, "count": s.Count(), "total": s.Total()}
}

// withinStock refuses a cart line of want units when p cannot cover it.
func withinStock(p models.Product, want int) error {
	if p.Stock <= 0 {
		return fmt.Errorf("%w: %s is out of stock", services.ErrInsufficientStock, p.Name)
	}
	if want > p.Stock {
		return fmt.Errorf("%w: only %d of %s left", services.ErrInsufficientStock, p.Stock, p.Name)
	}
	return nil
}

func (ctrl *Controller) dispatch(c *gin.Context, ctx context.Context, a cart.Action) {
	state, err := ctrl.Carts.Cart(session(c).UID()).Dispatch(ctx, a)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cartBody(state)})
}

func (ctrl *Controller) GetCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	state, err := ctrl.Carts.Cart(session(c).UID()).State(ctx)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cartBody(state)})
}

// AddCartItem snapshots the current product into the cart, refusing more
// units than are in stock.
func (ctrl *Controller) AddCartItem(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.CartItemRequest
	if !ctrl.bind(c, &req) {
		return
	}
	product, err := ctrl.Products.Get(ctx, req.ProductID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	state, err := ctrl.Carts.Cart(session(c).UID()).State(ctx)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	if err := withinStock(product, state.Quantity(product.ID)+req.Quantity); err != nil {
		ctrl.respondError(c, err)
		return
	}
	ctrl.dispatch(c, ctx, cart.Add(product, req.Quantity))
}

// UpdateCartItem sets a line's quantity, at most the product's stock; zero or less removes it.
func (ctrl *Controller) UpdateCartItem(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var req models.CartQuantityRequest
	if !ctrl.bind(c, &req) {
		return
	}
	id := c.Param("productId")
	if req.Quantity > 0 {
		product, err := ctrl.Products.Get(ctx, id)
		if err != nil {
			ctrl.respondError(c, err)
			return
		}
		if err := withinStock(product, req.Quantity); err != nil {
			ctrl.respondError(c, err)
			return
		}
	}
	ctrl.dispatch(c, ctx, cart.UpdateQuantity(id, req.Quantity))
}

func (ctrl *Controller) RemoveCartItem(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ctrl.dispatch(c, ctx, cart.Remove(c.Param("productId")))
}

func (ctrl *Controller) ClearCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ctrl.dispatch(c, ctx, cart.Clear())
}

// GetActiveCarts lists shoppers with something in their cart. Admin only.
func (ctrl *Controller) GetActiveCarts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owners, err := ctrl.Carts.Active(ctx)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	if owners == nil {
		owners = []cart.Owner{}
	}
	c.JSON(http.StatusOK, gin.H{"carts": owners})
}
