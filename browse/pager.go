package browse

// PageOf slices the 1-based page out of items. Total and pure for any
// page >= 1: out-of-range requests yield an empty slice, never an error.
// Clamping to the valid range is the caller's job.
func PageOf[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return nil
	}
	lo := (page - 1) * size
	if lo >= len(items) {
		return nil
	}
	hi := lo + size
	if hi > len(items) {
		hi = len(items)
	}
	return items[lo:hi]
}

// TotalPages is ceil(n/size). Zero records means zero pages.
func TotalPages(n, size int) int {
	if n <= 0 || size < 1 {
		return 0
	}
	return (n + size - 1) / size
}

// Offset is the number of records preceding the page, used for 1-based
// sequence numbers.
func Offset(page, size int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * size
}

// ClampPage pulls a requested page into [1, TotalPages(n, size)], or 1 when
// there are no pages at all.
func ClampPage(page, n, size int) int {
	total := TotalPages(n, size)
	if total == 0 || page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
