// Package cart holds each shopper's cart and recently viewed products.
// Cart state changes only through Reduce, applied by a single goroutine per
// cart, and is written to pluggable storage after every change.
package cart

import "shaaban-furniture-backend/models"

// Item is one cart line: a snapshot of the product and how many.
type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// State is the whole cart.
type State struct {
	Items []Item `json:"items"`
}

// Total sums the discounted line prices.
func (s State) Total() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.Product.EffectivePrice() * int64(it.Quantity)
	}
	return total
}

// Count is the number of units across all lines.
func (s State) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Quantity is how many of productID the cart holds.
func (s State) Quantity(productID string) int {
	for _, it := range s.Items {
		if it.Product.ID == productID {
			return it.Quantity
		}
	}
	return 0
}

func (s State) Empty() bool { return len(s.Items) == 0 }

type ActionKind int

const (
	ActionAdd ActionKind = iota
	ActionRemove
	ActionUpdateQuantity
	ActionClear
	ActionSetState
	ActionSubtract
)

type Action struct {
	Kind      ActionKind
	Product   models.Product
	ProductID string
	Quantity  int
	State     State
}

func Add(p models.Product, quantity int) Action {
	return Action{Kind: ActionAdd, Product: p, ProductID: p.ID, Quantity: quantity}
}

func Remove(productID string) Action {
	return Action{Kind: ActionRemove, ProductID: productID}
}

func UpdateQuantity(productID string, quantity int) Action {
	return Action{Kind: ActionUpdateQuantity, ProductID: productID, Quantity: quantity}
}

func Clear() Action { return Action{Kind: ActionClear} }

func SetState(s State) Action { return Action{Kind: ActionSetState, State: s} }

// Subtract takes the quantities in taken out of the cart, leaving anything
// added since taken was read.
func Subtract(taken State) Action { return Action{Kind: ActionSubtract, State: taken} }

// Reduce returns the state after a. It never modifies s.
// Adding a product already in the cart sums the quantities; a quantity
// update to zero or less drops the line.
func Reduce(s State, a Action) State {
	switch a.Kind {
	case ActionAdd:
		if a.Quantity <= 0 {
			return s
		}
		items := make([]Item, 0, len(s.Items)+1)
		merged := false
		for _, it := range s.Items {
			if it.Product.ID == a.Product.ID {
				it.Quantity += a.Quantity
				merged = true
			}
			items = append(items, it)
		}
		if !merged {
			items = append(items, Item{Product: a.Product, Quantity: a.Quantity})
		}
		return State{Items: items}

	case ActionRemove:
		items := make([]Item, 0, len(s.Items))
		for _, it := range s.Items {
			if it.Product.ID != a.ProductID {
				items = append(items, it)
			}
		}
		return State{Items: items}

	case ActionUpdateQuantity:
		items := make([]Item, 0, len(s.Items))
		for _, it := range s.Items {
			if it.Product.ID == a.ProductID {
				it.Quantity = a.Quantity
			}
			if it.Quantity > 0 {
				items = append(items, it)
			}
		}
		return State{Items: items}

	case ActionClear:
		return State{Items: []Item{}}

	case ActionSubtract:
		taken := make(map[string]int, len(a.State.Items))
		for _, it := range a.State.Items {
			taken[it.Product.ID] += it.Quantity
		}
		items := make([]Item, 0, len(s.Items))
		for _, it := range s.Items {
			it.Quantity -= taken[it.Product.ID]
			if it.Quantity > 0 {
				items = append(items, it)
			}
		}
		return State{Items: items}

	case ActionSetState:
		items := make([]Item, len(a.State.Items))
		copy(items, a.State.Items)
		return State{Items: items}
	}
	return s
}
