// Package request разбор параметров пути и строки запроса.
package request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

var ErrInvalidID = errors.New("invalid id")

// ID числовой параметр пути {id}
func ID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ListParams параметры списка: q, sort, desc, page, size
func ListParams(r *http.Request) service.ListParams {
	q := r.URL.Query()
	desc, _ := strconv.ParseBool(q.Get("desc"))
	return service.ListParams{
		Query:  q.Get("q"),
		SortBy: q.Get("sort"),
		Desc:   desc,
		Page:   q.Get("page"),
		Size:   q.Get("size"),
	}
}
