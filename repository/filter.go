package repository

// MaxPageSize caps paged listings.
const MaxPageSize = 100

// ClampLimit bounds page sizes to (0, MaxPageSize].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
