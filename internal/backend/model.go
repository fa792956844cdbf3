package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/storefront/internal/common/errors"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusReturned  OrderStatus = "RETURNED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// ParseOrderStatus accepts any casing. An empty label means "no status".
func ParseOrderStatus(label string) (OrderStatus, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if label == "" {
		return "", nil
	}
	for _, status := range OrderStatuses {
		if string(status) == label {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %s", inErrors.ErrInvalidStatus, label)
}

// Timestamp decodes both RFC 3339 and zone-less local date times.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func ParseTimestamp(value string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("failed parsing timestamp=%s", value)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if value == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Category    *Category       `json:"category,omitempty"`
	CreatedAt   Timestamp       `json:"createdAt"`
}

type OrderItem struct {
	ID        int64           `json:"id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Status    OrderStatus     `json:"status"`
	Product   *Product        `json:"product,omitempty"`
	User      *User           `json:"user,omitempty"`
	CreatedAt Timestamp       `json:"createdAt"`
}

type Address struct {
	ID      int64  `json:"id"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type User struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	PhoneNumber   string      `json:"phoneNumber"`
	Role          string      `json:"role"`
	OrderItemList []OrderItem `json:"orderItemList,omitempty"`
	Address       *Address    `json:"address,omitempty"`
}

// Envelope is the uniform body every backend endpoint answers with.
type Envelope struct {
	Status        int         `json:"status"`
	Message       string      `json:"message"`
	Token         string      `json:"token,omitempty"`
	Role          string      `json:"role,omitempty"`
	TotalPage     int         `json:"totalPage"`
	TotalElement  int64       `json:"totalElement"`
	User          *User       `json:"user,omitempty"`
	Product       *Product    `json:"product,omitempty"`
	ProductList   []Product   `json:"productList,omitempty"`
	CategoryList  []Category  `json:"categoryList,omitempty"`
	OrderItemList []OrderItem `json:"orderItemList,omitempty"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"gte=1"`
}

type OrderRequest struct {
	TotalPrice decimal.Decimal    `json:"totalPrice"`
	Items      []OrderItemRequest `json:"items"      validate:"required,min=1,dive"`
}
