// Package paginate cuts bounded windows out of operator lists.
package paginate

// Order selects how items are laid out before windowing.
type Order uint8

const (
	// InsertionOrder keeps the slice order.
	InsertionOrder Order = iota
	// NewestFirst reverses the slice so the last appended item comes first.
	NewestFirst
)

// Page is one rendered window. Index is zero-based and always valid for Pages.
type Page[T any] struct {
	Items   []T
	Index   int
	Pages   int
	Total   int
	HasPrev bool
	HasNext bool
}

// Number returns the one-based page number for display.
func (p Page[T]) Number() int { return p.Index + 1 }

// Offset returns the position of Items[0] within the ordered collection.
func (p Page[T]) Offset(size int) int { return p.Index * size }

// Render returns page of items. Out-of-range pages clamp to the nearest valid one and an
// empty collection yields a single empty page. items is never modified.
func Render[T any](items []T, page, size int, order Order) Page[T] {
	if size <= 0 {
		size = 1
	}
	total := len(items)
	pages := max(1, (total+size-1)/size)
	page = min(max(page, 0), pages-1)

	start := page * size
	end := min(start+size, total)
	window := make([]T, 0, end-start)
	for i := start; i < end; i++ {
		if order == NewestFirst {
			window = append(window, items[total-1-i])
		} else {
			window = append(window, items[i])
		}
	}

	return Page[T]{
		Items:   window,
		Index:   page,
		Pages:   pages,
		Total:   total,
		HasPrev: page > 0,
		HasNext: page < pages-1,
	}
}
