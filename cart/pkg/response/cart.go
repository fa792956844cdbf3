package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

func init() {
	// prices are written as JSON numbers, matching the persisted cart layout
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductID is the opaque product identifier. It decodes from a JSON string
// or number. Integer ids encode as numbers and anything else as a string.
type ProductID string

func (id ProductID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed decoding product id=%s with error=%w", string(data), err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("failed decoding product id=%s with error=%w", string(data), err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

type CartItem struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered cart snapshot. Snapshots are never mutated after they
// are published.
type Cart []CartItem

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c Cart) Find(id ProductID) (CartItem, bool) {
	for _, item := range c {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

func (c Cart) TotalQuantity() int {
	total := 0
	for _, item := range c {
		total += item.Quantity
	}
	return total
}

// Valid reports whether ids are unique and non-empty and every quantity is at
// least one.
func (c Cart) Valid() bool {
	seen := make(map[ProductID]struct{}, len(c))
	for _, item := range c {
		if item.ID == "" || item.Quantity < 1 || item.Price.IsNegative() {
			return false
		}
		if _, ok := seen[item.ID]; ok {
			return false
		}
		seen[item.ID] = struct{}{}
	}
	return true
}

// View is the body returned by the cart endpoints.
type View struct {
	Items         Cart            `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalQuantity int             `json:"totalQuantity"`
}

func NewView(c Cart) View {
	if c == nil {
		c = Cart{}
	}
	return View{Items: c, TotalPrice: c.TotalPrice(), TotalQuantity: c.TotalQuantity()}
}
