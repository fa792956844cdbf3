package pagination

// View is the state a list view keeps between renders: the current page and
// the active filter. The page size is fixed for the life of the view.
type View[T any] struct {
	itemsPerPage int
	page         int
	filterKey    string
	predicate    Predicate[T]
}

func NewView[T any](itemsPerPage int) *View[T] {
	if itemsPerPage < 1 {
		itemsPerPage = 1
	}
	return &View[T]{itemsPerPage: itemsPerPage, page: 1}
}

// SetFilter replaces the active filter and always returns to page 1.
func (v *View[T]) SetFilter(key string, predicate Predicate[T]) {
	v.filterKey = key
	v.predicate = predicate
	v.page = 1
}

func (v *View[T]) SetPage(page int) {
	v.page = page
}

func (v *View[T]) Page() int {
	return v.page
}

func (v *View[T]) FilterKey() string {
	return v.filterKey
}

func (v *View[T]) ItemsPerPage() int {
	return v.itemsPerPage
}

func (v *View[T]) Render(source []T) Page[T] {
	return Paginate(source, v.itemsPerPage, v.page, v.predicate)
}
