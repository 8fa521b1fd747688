package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/models"
)

func orderList(orders []models.Order) []models.Order { return orders }

// GetOrders lists all orders for admins and the caller's own otherwise.
func (ctrl *Controller) GetOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders, err := ctrl.Orders.List(ctx, session(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// StreamOrders is the role-gated live order list.
func (ctrl *Controller) StreamOrders(c *gin.Context) {
	streamLive(c, ctrl, ctrl.Orders.NewLive(), true, orderList)
}

func (ctrl *Controller) GetOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := ctrl.Orders.Get(ctx, session(c), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Checkout places the caller's cart as a Pending order.
func (ctrl *Controller) Checkout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.CheckoutRequest
	if !ctrl.bind(c, &req) {
		return
	}
	s := session(c)
	order, err := ctrl.Orders.Checkout(ctx, s, req, ctrl.Carts.Cart(s.UID()))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

// CancelOrder cancels the caller's own Pending order.
func (ctrl *Controller) CancelOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := ctrl.Orders.Cancel(ctx, session(c), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// SetOrderStatus moves an order along its lifecycle. Admin only.
func (ctrl *Controller) SetOrderStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.StatusRequest
	if !ctrl.bind(c, &req) {
		return
	}
	order, err := ctrl.Orders.SetStatus(ctx, session(c), c.Param("id"), req.Status)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// RecordPayment stores a payment against an order. Admin only.
func (ctrl *Controller) RecordPayment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.PaymentRequest
	if !ctrl.bind(c, &req) {
		return
	}
	order, err := ctrl.Orders.RecordPayment(ctx, session(c), c.Param("id"), req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// DirectSale records an in-store sale. Admin only.
func (ctrl *Controller) DirectSale(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.DirectSaleRequest
	if !ctrl.bind(c, &req) {
		return
	}
	order, err := ctrl.Orders.DirectSale(ctx, session(c), req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sale recorded", "order": order})
}
