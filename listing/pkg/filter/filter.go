package filter

import (
	"strings"
	"time"

	"github.com/Alturino/storefront/internal/backend"
	"github.com/Alturino/storefront/listing/pkg/pagination"
)

// ByStatus matches order items in status. An empty status matches all.
func ByStatus(status backend.OrderStatus) pagination.Predicate[backend.OrderItem] {
	if status == "" {
		return nil
	}
	return func(item backend.OrderItem) bool {
		return item.Status == status
	}
}

// NameContains matches products whose name contains term, ignoring case.
func NameContains(term string) pagination.Predicate[backend.Product] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	return func(p backend.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term)
	}
}

func ByCategory(categoryID int64) pagination.Predicate[backend.Product] {
	return func(p backend.Product) bool {
		return p.Category != nil && p.Category.ID == categoryID
	}
}

// CreatedBetween matches order items created within [from, to]. A zero bound
// is open.
func CreatedBetween(from time.Time, to time.Time) pagination.Predicate[backend.OrderItem] {
	if from.IsZero() && to.IsZero() {
		return nil
	}
	return func(item backend.OrderItem) bool {
		if !from.IsZero() && item.CreatedAt.Before(from) {
			return false
		}
		if !to.IsZero() && item.CreatedAt.After(to) {
			return false
		}
		return true
	}
}

func HasItemID(id int64) pagination.Predicate[backend.OrderItem] {
	if id == 0 {
		return nil
	}
	return func(item backend.OrderItem) bool {
		return item.ID == id
	}
}

// All matches records accepted by every non-nil predicate. It returns nil
// when no predicate is set.
func All[T any](predicates ...pagination.Predicate[T]) pagination.Predicate[T] {
	active := make([]pagination.Predicate[T], 0, len(predicates))
	for _, p := range predicates {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(record T) bool {
		for _, p := range active {
			if !p(record) {
				return false
			}
		}
		return true
	}
}
