package openmat

// DefaultPageSize matches the six-card grid the directory renders.
const DefaultPageSize = 6

// Paginate returns page n (1-based) of items in fixed-size slices.
// A page beyond the end yields an empty slice, not an error; the caller
// is responsible for clamping page numbers below 1.
func Paginate(items []OpenMat, page, size int) []OpenMat {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []OpenMat{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageCount is ceil(n/size), minimum 0.
func PageCount(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
