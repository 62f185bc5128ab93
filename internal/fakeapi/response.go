package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// pagination mirrors meta.pagination.
type pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Meta    *meta     `json:"meta,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type meta struct {
	Pagination *pagination `json:"pagination,omitempty"`
}

func respondOK(w http.ResponseWriter, data any, pg *pagination) {
	env := envelope{Success: true, Data: data}
	if pg != nil {
		env.Meta = &meta{Pagination: pg}
	}
	respondJSON(w, http.StatusOK, env)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, envelope{Error: &apiError{Code: code, Message: message}})
}

func respondJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// paginate slices items by the page and page_size query parameters.
func paginate[T any](items []T, q url.Values) ([]T, *pagination) {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size < 1 {
		size = 20
	}

	total := len(items)
	pages := (total + size - 1) / size
	start := min((page-1)*size, total)
	end := min(start+size, total)

	return items[start:end], &pagination{
		Page:        page,
		PageSize:    size,
		TotalItems:  total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}
}
