// Package paginate slices ordered collections into 1-indexed pages for
// inline keyboard rendering.
package paginate

// Page holds one page of items plus the navigation affordances for it.
//
// HasPrev and HasNext are computed from the requested page number, not
// from a clamped one: asking for a page past the end yields an empty
// Items slice with HasPrev still true.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// Paginate returns page number of items at pageSize per page. Pages are
// 1-indexed. TotalPages is at least 1 even for an empty input; callers
// that need a non-empty list must check for that themselves.
func Paginate[T any](items []T, pageSize, number int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if number < 1 {
		number = 1
	}

	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (number - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		TotalPages: totalPages,
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
	}
}
