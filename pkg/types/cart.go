package types

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one product/quantity/size/customization entry within the cart.
// IDs are assigned by the remote cart store; the engine never invents them.
type CartLine struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int       `json:"quantity"`
	Size           *string   `json:"size,omitempty"`
	CustomImageURL *string   `json:"custom_image_url,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}

// HasCustomImage reports whether the line already carries an uploaded artifact.
func (c CartLine) HasCustomImage() bool {
	return c.CustomImageURL != nil && *c.CustomImageURL != ""
}
