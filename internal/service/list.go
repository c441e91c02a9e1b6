package service

import (
	"github.com/Freeeeeet/tutoring_admin/internal/search"
)

// ListParams параметры поиска, сортировки и пагинации списков.
// Page и Size приходят строками из query-параметров; пустой Page отключает пагинацию
type ListParams struct {
	Query  string
	SortBy string
	Desc   bool
	Page   string
	Size   string
}

// Page страница результатов. Total количество записей после фильтрации
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func listPage[T any](items []T, params ListParams, fields []search.Field[T], sortKeys map[string]func(T) string, defaultSort string) Page[T] {
	filtered := search.Filter(items, params.Query, fields...)

	key, ok := sortKeys[params.SortBy]
	if !ok {
		key = sortKeys[defaultSort]
	}
	if key != nil {
		filtered = search.SortBy(filtered, key, params.Desc)
	}

	page := Page[T]{Total: len(filtered), Items: filtered}
	if params.Page != "" || params.Size != "" {
		size := params.Size
		if size == "" {
			size = "20"
		}
		pageNum := params.Page
		if pageNum == "" {
			pageNum = "1"
		}
		page.Items = search.PaginateParams(filtered, pageNum, size)
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	return page
}
