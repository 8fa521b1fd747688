package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductImage defines a single picture of a product and its alt hint.
type ProductImage struct {
	URL      string `json:"url" bson:"url" firestore:"url"`
	Hint     string `json:"hint" bson:"hint" firestore:"hint"`
	PublicID string `json:"publicId,omitempty" bson:"publicId,omitempty" firestore:"publicId,omitempty"`
}

// Product defines the structure of a catalog product. Price is in whole TZS.
type Product struct {
	ID                 string         `json:"id" bson:"-" firestore:"-"`
	Name               string         `json:"name" bson:"name" firestore:"name"`
	Description        string         `json:"description" bson:"description" firestore:"description"`
	Price              int64          `json:"price" bson:"price" firestore:"price"`
	Category           string         `json:"category" bson:"category" firestore:"category"`
	Images             []ProductImage `json:"images" bson:"images" firestore:"images"`
	Sizes              []string       `json:"sizes,omitempty" bson:"sizes,omitempty" firestore:"sizes,omitempty"`
	Materials          []string       `json:"materials,omitempty" bson:"materials,omitempty" firestore:"materials,omitempty"`
	Stock              int            `json:"stock" bson:"stock" firestore:"stock"`
	IsFeatured         bool           `json:"isFeatured" bson:"isFeatured" firestore:"isFeatured"`
	DiscountPercentage *int           `json:"discountPercentage,omitempty" bson:"discountPercentage,omitempty" firestore:"discountPercentage,omitempty"`
	DeliveryInfo       string         `json:"deliveryInfo,omitempty" bson:"deliveryInfo,omitempty" firestore:"deliveryInfo,omitempty"`
	CreatedAt          time.Time      `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

// EffectivePrice applies the discount, rounding half up to the nearest shilling.
func (p Product) EffectivePrice() int64 {
	if p.DiscountPercentage == nil || *p.DiscountPercentage <= 0 {
		return p.Price
	}
	pct := *p.DiscountPercentage
	if pct >= 100 {
		return 0
	}
	price := decimal.NewFromInt(p.Price).
		Mul(decimal.NewFromInt(int64(100 - pct))).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return price.IntPart()
}

// ProductView is the JSON shape handed to clients.
type ProductView struct {
	Product
	EffectivePrice int64 `json:"effectivePrice"`
}

// View wraps the product with its derived fields.
func (p Product) View() ProductView {
	return ProductView{Product: p, EffectivePrice: p.EffectivePrice()}
}
