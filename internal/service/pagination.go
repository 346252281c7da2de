package service

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	DefaultTrendingLimit = 10
)

type PageRequest struct {
	Page     int
	PageSize int
}

func normalizePageRequest(in PageRequest) PageRequest {
	out := in
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	if out.PageSize < 1 {
		out.PageSize = DefaultPageSize
	}
	if out.PageSize > MaxPageSize {
		out.PageSize = MaxPageSize
	}
	return out
}

// TotalPages reports how many pages of size hold total items.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
