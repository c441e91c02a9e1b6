// Package search содержит фильтрацию, сортировку и постраничную выдачу списков.
package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Paginate возвращает страницу page (с 1) размера size: items[(page-1)*size : page*size].
// Для некорректных параметров и страниц за пределами списка возвращается пустой срез
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}

	// сравнение до умножения: (page-1)*size не должно переполниться
	if len(items) == 0 || page-1 > (len(items)-1)/size {
		return []T{}
	}

	start := (page - 1) * size
	return items[start : start+min(size, len(items)-start)]
}

// PaginateParams то же, что Paginate, но принимает параметры строками из запроса
func PaginateParams[T any](items []T, pageRaw, sizeRaw string) []T {
	page, err := strconv.Atoi(strings.TrimSpace(pageRaw))
	if err != nil {
		return []T{}
	}
	size, err := strconv.Atoi(strings.TrimSpace(sizeRaw))
	if err != nil {
		return []T{}
	}
	return Paginate(items, page, size)
}

// Field поле, по которому ищется токен запроса
type Field[T any] struct {
	Value func(T) string
	Exact bool
}

// Substring поле, совпадающее по вхождению подстроки
func Substring[T any](value func(T) string) Field[T] {
	return Field[T]{Value: value}
}

// Exact поле, совпадающее только целиком
func Exact[T any](value func(T) string) Field[T] {
	return Field[T]{Value: value, Exact: true}
}

func (f Field[T]) matches(item T, token string) bool {
	value := strings.ToLower(f.Value(item))
	if f.Exact {
		return value == token
	}
	return strings.Contains(value, token)
}

// Filter оставляет элементы, для которых каждый токен запроса совпал хотя бы с одним полем.
// Сравнение без учёта регистра. Пустой запрос возвращает все элементы
func Filter[T any](items []T, query string, fields ...Field[T]) []T {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return items
	}

	return lo.Filter(items, func(item T, _ int) bool {
		return lo.EveryBy(tokens, func(token string) bool {
			return lo.SomeBy(fields, func(f Field[T]) bool {
				return f.matches(item, token)
			})
		})
	})
}

// SortBy стабильно сортирует копию списка по строковому ключу без учёта регистра
func SortBy[T any](items []T, key func(T) string, desc bool) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := strings.ToLower(key(sorted[i])), strings.ToLower(key(sorted[j]))
		if desc {
			return a > b
		}
		return a < b
	})

	return sorted
}
