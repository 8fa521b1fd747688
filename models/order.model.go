package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusDelivered, StatusCancelled},
	StatusProcessing: {StatusDelivered, StatusCancelled},
}

// Valid reports whether s is one of the four known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
// Delivered and Cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem defines one line of an order.
type OrderItem struct {
	ProductID   string `json:"productId" bson:"productId" firestore:"productId"`
	ProductName string `json:"productName" bson:"productName" firestore:"productName"`
	Quantity    int    `json:"quantity" bson:"quantity" firestore:"quantity"`
	Price       int64  `json:"price" bson:"price" firestore:"price"`
}

// Order defines the structure of a customer or in-store order.
type Order struct {
	ID            string      `json:"id" bson:"-" firestore:"-"`
	CustomerName  string      `json:"customerName" bson:"customerName" firestore:"customerName"`
	Phone         string      `json:"phone" bson:"phone" firestore:"phone"`
	Address       string      `json:"address" bson:"address" firestore:"address"`
	Items         []OrderItem `json:"items" bson:"items" firestore:"items"`
	Total         int64       `json:"total" bson:"total" firestore:"total"`
	AmountPaid    *int64      `json:"amountPaid,omitempty" bson:"amountPaid,omitempty" firestore:"amountPaid,omitempty"`
	Balance       *int64      `json:"balance,omitempty" bson:"balance,omitempty" firestore:"balance,omitempty"`
	PaymentMethod string      `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty" firestore:"paymentMethod,omitempty"`
	Status        OrderStatus `json:"status" bson:"status" firestore:"status"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UserID        string      `json:"userId" bson:"userId" firestore:"userId"`
}

// ItemsTotal sums price times quantity over the items.
func ItemsTotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
