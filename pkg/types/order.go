package types

import (
	"time"

	"github.com/craftline/cartengine/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one resolved line of an order submission.
type OrderLine struct {
	CartLineID     uuid.UUID       `json:"cart_line_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductTitle   string          `json:"product_title"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"price"`
	Size           *string         `json:"size,omitempty"`
	CustomImageURL *string         `json:"custom_image_url,omitempty"`
	LineTotal      decimal.Decimal `json:"total"`
}

// OrderRequest is the single order-creation payload assembled at checkout.
// Immutable after construction; submitted exactly once per successful checkout.
type OrderRequest struct {
	BillingAddress string               `json:"billing_address"`
	Phone          string               `json:"phone"`
	ShippingOption enums.ShippingOption `json:"shipping_option"`
	Lines          []OrderLine          `json:"items"`
}

// Order is the remote order store's record as returned to the client.
type Order struct {
	ID             uuid.UUID         `json:"id"`
	Status         enums.OrderStatus `json:"status"`
	BillingAddress string            `json:"billing_address"`
	Phone          string            `json:"phone"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	Lines          []OrderLine       `json:"items"`
	CreatedAt      time.Time         `json:"created_at"`
}

// User is the profile the credential provider exposes.
type User struct {
	ID   uuid.UUID      `json:"id"`
	Role enums.UserRole `json:"role"`
}
