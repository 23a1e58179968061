package repository

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ClampPage normalizes pagination inputs: page floors at 1, size floors
// at the default and is capped at the maximum.
func ClampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
