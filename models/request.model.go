package models

// SignInRequest defines the body of an email sign-in.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignUpRequest defines the body of an email registration.
type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName"`
}

// GoogleSignInRequest carries the ID token obtained by the client from Google.
type GoogleSignInRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// ProductRequest defines the body for creating or updating a product.
// ImageBase64, when set, is uploaded and appended to Images.
type ProductRequest struct {
	Name               string         `json:"name" binding:"required,min=2"`
	Description        string         `json:"description" binding:"required,min=10"`
	Price              int64          `json:"price" binding:"gte=0"`
	Category           string         `json:"category" binding:"required"`
	Images             []ProductImage `json:"images"`
	Sizes              []string       `json:"sizes"`
	Materials          []string       `json:"materials"`
	Stock              int            `json:"stock" binding:"gte=0"`
	IsFeatured         bool           `json:"isFeatured"`
	DiscountPercentage *int           `json:"discountPercentage" binding:"omitempty,gte=0,lte=100"`
	DeliveryInfo       string         `json:"deliveryInfo"`
	ImageBase64        string         `json:"image_base64,omitempty"`
	ImageHint          string         `json:"imageHint,omitempty"`
}

// CartItemRequest adds a product to the cart.
type CartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
}

// CartQuantityRequest sets the quantity of a cart line; zero removes it.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest defines the delivery details submitted at checkout.
type CheckoutRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Phone   string `json:"phone" binding:"required,min=10"`
	Address string `json:"address" binding:"required,min=5"`
}

// DirectSaleRequest records an in-store sale.
type DirectSaleRequest struct {
	ProductID    string `json:"productId" binding:"required"`
	Quantity     int    `json:"quantity" binding:"gte=1"`
	CustomerName string `json:"customerName" binding:"max=100"`
}

// StatusRequest changes an order status.
type StatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// PaymentRequest records a payment against an order.
type PaymentRequest struct {
	AmountPaid    int64  `json:"amountPaid" binding:"gte=0"`
	PaymentMethod string `json:"paymentMethod" binding:"max=50"`
}

// ReviewRequest submits a testimonial for moderation.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"gte=1,lte=5"`
	Message string `json:"message" binding:"required,min=10,max=1000"`
}

// AdminRoleRequest grants or revokes the admin role.
type AdminRoleRequest struct {
	Admin bool `json:"admin"`
}

// ProfileRequest updates the caller's own profile.
type ProfileRequest struct {
	DisplayName string `json:"displayName" binding:"max=80"`
	PhotoURL    string `json:"photoURL" binding:"omitempty,url"`
}

// ContactRequest defines a contact-form submission.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,min=10"`
}

// NewsletterRequest subscribes an email to the newsletter.
type NewsletterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ChatTurn is one entry of a chat history.
type ChatTurn struct {
	Role    string `json:"role" binding:"oneof=user model"`
	Content string `json:"content"`
}

// ChatRequest defines the chatbot input.
type ChatRequest struct {
	History []ChatTurn `json:"history" binding:"dive"`
	Message string     `json:"message" binding:"required"`
}

// RecommendationRequest asks for suggestions shown next to a product.
type RecommendationRequest struct {
	CurrentProductID string `json:"currentProductId"`
}
