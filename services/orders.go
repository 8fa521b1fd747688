package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/cart"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/store"
)

const (
	inStoreCustomer = "In-Store Customer"
	inStorePhone    = "N/A"
	inStoreAddress  = "Direct Sale"
)

var ordersGate = access.Gate{Collection: store.Orders, OwnerField: "userId", OrderBy: "createdAt"}

type OrderService struct {
	store    store.Store
	products *ProductService
	logger   *log.Logger
	now      clock
}

func NewOrderService(st store.Store, products *ProductService, logger *log.Logger) *OrderService {
	if logger == nil {
		logger = log.Default()
	}
	return &OrderService{store: st, products: products, logger: logger, now: time.Now}
}

func (s *OrderService) decoder() access.Decoder[models.Order] {
	return orderDecoder(s.now)
}

// List returns every order for admins and the caller's own orders otherwise.
func (s *OrderService) List(ctx context.Context, sess access.Session) ([]models.Order, error) {
	return access.LoadAs(ctx, s.store, ordersGate, sess, s.decoder())
}

// NewLive returns an unstarted role-gated live query over orders.
func (s *OrderService) NewLive() *access.LiveQuery[models.Order] {
	return access.NewLiveQuery(s.store, ordersGate, s.decoder(), s.logger)
}

// Get returns an order visible to the caller. Other customers' orders are
// reported as not found.
func (s *OrderService) Get(ctx context.Context, sess access.Session, id string) (models.Order, error) {
	if err := requireIdentity(sess); err != nil {
		return models.Order{}, err
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !sess.IsAdmin() && o.UserID != sess.UID() {
		return models.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) load(ctx context.Context, id string) (models.Order, error) {
	doc, err := s.store.Get(ctx, store.Orders, id)
	if err != nil {
		return models.Order{}, err
	}
	return s.decoder()(doc)
}

// Checkout turns the cart into one Pending order at current prices and
// takes the ordered lines out of the cart once the order is stored. Stock is
// checked but not reserved.
func (s *OrderService) Checkout(ctx context.Context, sess access.Session, req models.CheckoutRequest, c *cart.Cart) (models.Order, error) {
	if err := requireIdentity(sess); err != nil {
		return models.Order{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if err := check(req); err != nil {
		return models.Order{}, err
	}

	state, err := c.State(ctx)
	if err != nil {
		return models.Order{}, err
	}
	if state.Empty() {
		return models.Order{}, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(state.Items))
	for _, line := range state.Items {
		p, err := s.products.Get(ctx, line.Product.ID)
		if err != nil {
			return models.Order{}, productUnavailable(line.Product.ID, err)
		}
		if line.Quantity > p.Stock {
			return models.Order{}, fmt.Errorf("%w: %s has %d left, %d requested", ErrInsufficientStock, p.Name, p.Stock, line.Quantity)
		}
		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.EffectivePrice(),
		})
	}

	o := models.Order{
		CustomerName: req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		Items:        items,
		Total:        models.ItemsTotal(items),
		Status:       models.StatusPending,
		CreatedAt:    s.now(),
		UserID:       sess.UID(),
	}
	id, err := s.store.Add(ctx, store.Orders, o)
	if err != nil {
		return models.Order{}, fmt.Errorf("place order: %w", err)
	}
	o.ID = id

	if _, err := c.Dispatch(ctx, cart.Subtract(state)); err != nil {
		s.logger.Printf("order %s placed but cart of %s not updated: %v", id, sess.UID(), err)
	}
	return o, nil
}

// DirectSale records an in-store sale: stock is decremented atomically and
// one Delivered order is written. Selling more than is in stock is refused
// before anything is written.
func (s *OrderService) DirectSale(ctx context.Context, sess access.Session, req models.DirectSaleRequest) (models.Order, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Order{}, err
	}
	if err := check(req); err != nil {
		return models.Order{}, err
	}
	p, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return models.Order{}, productUnavailable(req.ProductID, err)
	}
	if req.Quantity > p.Stock {
		return models.Order{}, fmt.Errorf("%w: %s has %d left, %d requested", ErrInsufficientStock, p.Name, p.Stock, req.Quantity)
	}

	qty := int64(req.Quantity)
	if _, err := s.store.AdjustInt(ctx, store.Products, p.ID, "stock", -qty, 0); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return models.Order{}, fmt.Errorf("%w: %s sold out meanwhile", ErrInsufficientStock, p.Name)
		}
		return models.Order{}, fmt.Errorf("decrement stock of %s: %w", p.ID, err)
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = inStoreCustomer
	}
	items := []models.OrderItem{{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    req.Quantity,
		Price:       p.EffectivePrice(),
	}}
	total := models.ItemsTotal(items)
	var balance int64
	o := models.Order{
		CustomerName: name,
		Phone:        inStorePhone,
		Address:      inStoreAddress,
		Items:        items,
		Total:        total,
		AmountPaid:   &total,
		Balance:      &balance,
		Status:       models.StatusDelivered,
		CreatedAt:    s.now(),
		UserID:       sess.UID(),
	}
	id, err := s.store.Add(ctx, store.Orders, o)
	if err != nil {
		if _, restoreErr := s.store.AdjustInt(ctx, store.Products, p.ID, "stock", qty, 0); restoreErr != nil {
			s.logger.Printf("direct sale of %s failed and stock was not restored: %v", p.ID, restoreErr)
		}
		return models.Order{}, fmt.Errorf("record direct sale: %w", err)
	}
	o.ID = id
	return o, nil
}

// SetStatus moves an order along Pending -> Processing -> Delivered, with
// Cancelled reachable until delivery. Writing the current status is a no-op.
func (s *OrderService) SetStatus(ctx context.Context, sess access.Session, id string, status models.OrderStatus) (models.Order, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Order{}, err
	}
	if !status.Valid() {
		return models.Order{}, invalid("status", "must be one of: Pending Processing Delivered Cancelled")
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if o.Status == status {
		return o, nil
	}
	if !o.Status.CanTransitionTo(status) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}
	if err := s.moveStatus(ctx, id, o.Status, status); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return models.Order{}, fmt.Errorf("%w: order %s changed while updating", ErrInvalidTransition, id)
		}
		return models.Order{}, err
	}
	o.Status = status
	return o, nil
}

// moveStatus writes next only while the stored status is still from.
func (s *OrderService) moveStatus(ctx context.Context, id string, from, next models.OrderStatus) error {
	cond := store.Filter{Field: "status", Value: from}
	return s.store.UpdateIf(ctx, store.Orders, id, cond, map[string]any{"status": next})
}

// Cancel lets a customer cancel their own order while it is still Pending.
func (s *OrderService) Cancel(ctx context.Context, sess access.Session, id string) (models.Order, error) {
	o, err := s.Get(ctx, sess, id)
	if err != nil {
		return models.Order{}, err
	}
	if o.UserID != sess.UID() {
		return models.Order{}, ErrPermissionDenied
	}
	if o.Status != models.StatusPending {
		return models.Order{}, fmt.Errorf("%w: order is %s", ErrNotCancellable, o.Status)
	}
	if err := s.moveStatus(ctx, id, models.StatusPending, models.StatusCancelled); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return models.Order{}, fmt.Errorf("%w: order is no longer Pending", ErrNotCancellable)
		}
		return models.Order{}, err
	}
	o.Status = models.StatusCancelled
	return o, nil
}

// RecordPayment stores what was paid and the outstanding balance.
func (s *OrderService) RecordPayment(ctx context.Context, sess access.Session, id string, req models.PaymentRequest) (models.Order, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Order{}, err
	}
	if err := check(req); err != nil {
		return models.Order{}, err
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if req.AmountPaid > o.Total {
		return models.Order{}, invalid("amountPaid", fmt.Sprintf("must not exceed the order total of %s", models.FormatTZS(o.Total)))
	}
	paid := req.AmountPaid
	balance := o.Total - paid
	fields := map[string]any{"amountPaid": paid, "balance": balance}
	if method := strings.TrimSpace(req.PaymentMethod); method != "" {
		fields["paymentMethod"] = method
		o.PaymentMethod = method
	}
	if err := s.store.Update(ctx, store.Orders, id, fields); err != nil {
		return models.Order{}, err
	}
	o.AmountPaid, o.Balance = &paid, &balance
	return o, nil
}
