package response

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductIDUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected ProductID
		isErr    bool
	}{
		{name: "given string id should keep it", raw: `"abc-1"`, expected: "abc-1"},
		{name: "given numeric id should convert to string", raw: `42`, expected: "42"},
		{name: "given null should be empty", raw: `null`, expected: ""},
		{name: "given object should fail", raw: `{"id":1}`, isErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var id ProductID
			err := json.Unmarshal([]byte(test.raw), &id)
			if test.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, id)
		})
	}
}

func TestCartTotalPrice(t *testing.T) {
	cart := Cart{
		{ID: "1", Price: decimal.RequireFromString("10.00"), Quantity: 3},
		{ID: "2", Price: decimal.RequireFromString("0.15"), Quantity: 2},
	}

	assert.True(t, decimal.RequireFromString("30.30").Equal(cart.TotalPrice()))
	assert.Equal(t, 5, cart.TotalQuantity())
	assert.True(t, Cart{}.TotalPrice().IsZero())
}

func TestCartValid(t *testing.T) {
	tests := []struct {
		name     string
		cart     Cart
		expected bool
	}{
		{name: "given empty cart should be valid", cart: Cart{}, expected: true},
		{name: "given unique items should be valid", cart: Cart{{ID: "1", Quantity: 1}, {ID: "2", Quantity: 4}}, expected: true},
		{name: "given duplicate id should be invalid", cart: Cart{{ID: "1", Quantity: 1}, {ID: "1", Quantity: 1}}, expected: false},
		{name: "given zero quantity should be invalid", cart: Cart{{ID: "1", Quantity: 0}}, expected: false},
		{name: "given empty id should be invalid", cart: Cart{{ID: "", Quantity: 1}}, expected: false},
		{name: "given negative price should be invalid", cart: Cart{{ID: "1", Quantity: 1, Price: decimal.NewFromInt(-1)}}, expected: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.cart.Valid())
		})
	}
}

func TestCartItemEncodesNumbers(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		expectedID string
	}{
		{name: "given numeric id should encode id and price as numbers", payload: `{"id":7,"name":"Mug","price":"2.5","quantity":1}`, expectedID: `"id":7`},
		{name: "given numeric string id should encode id as number", payload: `{"id":"7","name":"Mug","price":2.5,"quantity":1}`, expectedID: `"id":7`},
		{name: "given zero padded id should encode id as string", payload: `{"id":"007","name":"Mug","price":2.5,"quantity":1}`, expectedID: `"id":"007"`},
		{name: "given opaque id should encode id as string", payload: `{"id":"sku-7","name":"Mug","price":2.5,"quantity":1}`, expectedID: `"id":"sku-7"`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var item CartItem
			require.NoError(t, json.Unmarshal([]byte(test.payload), &item))

			encoded, err := json.Marshal(item)

			require.NoError(t, err)
			assert.Contains(t, string(encoded), test.expectedID)
			assert.Contains(t, string(encoded), `"price":2.5`)

			var decoded CartItem
			require.NoError(t, json.Unmarshal(encoded, &decoded))
			assert.Equal(t, item.ID, decoded.ID)
		})
	}
}
