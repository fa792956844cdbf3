package request

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/pkg/response"
)

// Product is the record handed to add and increment. Fields other than ID
// are cached in the cart on first add.
type Product struct {
	ID          response.ProductID `json:"id"          validate:"required"`
	Name        string             `json:"name"`
	Price       decimal.Decimal    `json:"price"       validate:"price"`
	ImageURL    string             `json:"imageUrl"`
	Description string             `json:"description"`
}

func (p Product) ToCartItem(quantity int) response.CartItem {
	return response.CartItem{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Quantity:    quantity,
	}
}
