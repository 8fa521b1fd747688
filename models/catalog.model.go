package models

// Category defines a product category shown on the storefront.
type Category struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Image     string `json:"image" yaml:"image"`
	ImageHint string `json:"imageHint" yaml:"imageHint"`
}

// StoreInfo holds the shop metadata used by the storefront and the chat assistant.
type StoreInfo struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
	Phone    string `json:"phone" yaml:"phone"`
	WhatsApp string `json:"whatsapp" yaml:"whatsapp"`
	Email    string `json:"email" yaml:"email"`
	Currency string `json:"currency" yaml:"currency"`
}

// Catalog is the static store metadata loaded at startup.
type Catalog struct {
	Store      StoreInfo  `json:"store" yaml:"store"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// CategoryName returns the display name for id, or id itself when unknown.
func (c Catalog) CategoryName(id string) string {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat.Name
		}
	}
	return id
}
