package models

// Page is one page of a merged, sorted listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Paginate slices items (already sorted) into page number page of size limit.
func Paginate[T any](items []T, page, limit int) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	total := len(items)
	totalPages := (total + limit - 1) / limit

	skip := (page - 1) * limit
	out := []T{}
	if skip < total {
		end := skip + limit
		if end > total {
			end = total
		}
		out = append(out, items[skip:end]...)
	}

	return Page[T]{Items: out, Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}
