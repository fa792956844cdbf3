package response

import "github.com/Alturino/storefront/listing/pkg/pagination"

type List[T any] struct {
	Items        []T    `json:"items"`
	Page         int    `json:"page"`
	TotalPages   int    `json:"totalPages"`
	TotalItems   int    `json:"totalItems"`
	ItemsPerPage int    `json:"itemsPerPage"`
	FilterKey    string `json:"filterKey"`
}

func NewList[T any](page pagination.Page[T], itemsPerPage int, filterKey string) List[T] {
	return List[T]{
		Items:        page.Items,
		Page:         page.Page,
		TotalPages:   page.TotalPages,
		TotalItems:   page.TotalItems,
		ItemsPerPage: itemsPerPage,
		FilterKey:    filterKey,
	}
}
