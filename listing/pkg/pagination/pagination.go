// Package pagination derives the visible slice of an already fetched
// collection for one page of a list view.
package pagination

// Page sizes used by the storefront list views.
const (
	CatalogPageSize       = 10
	CategoryPageSize      = 8
	AdminProductsPageSize = 10
	AdminOrdersPageSize   = 10
	ProfileOrdersPageSize = 5
	CategoriesPageSize    = 10
)

// Predicate selects records. A nil Predicate selects everything.
type Predicate[T any] func(T) bool

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// Paginate filters source with predicate, preserving order, and returns the
// 1-indexed page of itemsPerPage records. Pages outside 1..TotalPages yield
// an empty slice. itemsPerPage below 1 is treated as 1.
func Paginate[T any](source []T, itemsPerPage int, page int, predicate Predicate[T]) Page[T] {
	if itemsPerPage < 1 {
		itemsPerPage = 1
	}

	filtered := source
	if predicate != nil {
		filtered = make([]T, 0, len(source))
		for _, item := range source {
			if predicate(item) {
				filtered = append(filtered, item)
			}
		}
	}

	totalItems := len(filtered)
	totalPages := (totalItems + itemsPerPage - 1) / itemsPerPage

	items := []T{}
	if page >= 1 && page <= totalPages {
		start := (page - 1) * itemsPerPage
		end := min(start+itemsPerPage, totalItems)
		items = append(items, filtered[start:end]...)
	}

	return Page[T]{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
}
