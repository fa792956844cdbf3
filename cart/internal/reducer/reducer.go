package reducer

import (
	"slices"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
)

// Reduce applies cmd to state and returns a new snapshot. state is never
// modified. Commands with an invalid payload, or that target an absent item
// where that is meaningless, return a copy of state unchanged.
func Reduce(state response.Cart, cmd Command) response.Cart {
	switch cmd := cmd.(type) {
	case Add:
		return add(state, cmd.Product)
	case Increment:
		return add(state, cmd.Product)
	case Decrement:
		return decrement(state, cmd.ID)
	case Remove:
		return remove(state, cmd.ID)
	case Clear:
		return response.Cart{}
	default:
		// nil and foreign implementations, e.g. a type embedding Add
		return clone(state)
	}
}

func add(state response.Cart, p request.Product) response.Cart {
	next := clone(state)
	if p.ID == "" || p.Price.IsNegative() {
		return next
	}
	for i := range next {
		if next[i].ID == p.ID {
			next[i].Quantity++
			return next
		}
	}
	return append(next, p.ToCartItem(1))
}

func decrement(state response.Cart, id response.ProductID) response.Cart {
	next := clone(state)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		if next[i].Quantity > 1 {
			next[i].Quantity--
			return next
		}
		return slices.Delete(next, i, i+1)
	}
	return next
}

func remove(state response.Cart, id response.ProductID) response.Cart {
	return slices.DeleteFunc(clone(state), func(item response.CartItem) bool {
		return item.ID == id
	})
}

func clone(state response.Cart) response.Cart {
	next := make(response.Cart, len(state), len(state)+1)
	copy(next, state)
	return next
}
