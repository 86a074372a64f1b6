package pager

// Pager slices an in-memory list into pages. When the identity of the input
// list changes (a fresh search or filter result), the current page resets to
// 1 so a stale page number never points past the end of the new list.
type Pager[T any] struct {
	pageSize  int
	page      int
	lastFirst *T
	lastLen   int
}

// New creates a pager with the given page size. Sizes below 1 fall back to 10.
func New[T any](pageSize int) *Pager[T] {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Pager[T]{pageSize: pageSize, page: 1}
}

// Page returns the current page number (1-based).
func (p *Pager[T]) Page() int {
	return p.page
}

// PageSize returns the configured page size.
func (p *Pager[T]) PageSize() int {
	return p.pageSize
}

// SetPage moves to the given page. Values below 1 clamp to 1.
func (p *Pager[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	p.page = page
}

// TotalPages returns the number of pages needed for n items.
func (p *Pager[T]) TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + p.pageSize - 1) / p.pageSize
}

// Slice returns the visible page of items.
func (p *Pager[T]) Slice(items []T) []T {
	if !p.sameIdentity(items) {
		p.page = 1
		p.remember(items)
	}

	start := (p.page - 1) * p.pageSize
	if start >= len(items) {
		return nil
	}
	end := start + p.pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (p *Pager[T]) sameIdentity(items []T) bool {
	if len(items) != p.lastLen {
		return false
	}
	if len(items) == 0 {
		return true
	}
	return &items[0] == p.lastFirst
}

func (p *Pager[T]) remember(items []T) {
	p.lastLen = len(items)
	if len(items) > 0 {
		p.lastFirst = &items[0]
	} else {
		p.lastFirst = nil
	}
}
