package request

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ListQuery is the query string shared by every list endpoint. FilterKey is
// the key the client received with its previous page.
type ListQuery struct {
	Page         int    `json:"page"         validate:"gte=0"`
	FilterKey    string `json:"filterKey"`
	Search       string `json:"search"       validate:"max=100"`
	Status       string `json:"status"`
	SearchStatus string `json:"searchStatus"`
}

func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{
		FilterKey:    values.Get("filterKey"),
		Search:       strings.TrimSpace(values.Get("search")),
		Status:       strings.TrimSpace(values.Get("status")),
		SearchStatus: strings.TrimSpace(values.Get("searchStatus")),
	}
	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return ListQuery{}, fmt.Errorf("failed parsing page=%s with error=%w", raw, err)
		}
		q.Page = page
	}
	return q, nil
}

// EffectivePage returns the page to render for the active filter key. A
// changed filter always starts again from page 1.
func (q ListQuery) EffectivePage(activeFilterKey string) int {
	if q.FilterKey != activeFilterKey || q.Page == 0 {
		return 1
	}
	return q.Page
}
