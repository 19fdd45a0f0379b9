package response

// PageEnvelope is the wrapper the data grid expects for paged reads.
type PageEnvelope[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	TotalCount int `json:"totalCount"`
}

// NewPageEnvelope is a helper to quickly create a paged response.
func NewPageEnvelope[T any](data []T, page, total int) PageEnvelope[T] {
	// Handle empty slice to avoid JSON outputting null
	if data == nil {
		data = make([]T, 0)
	}

	return PageEnvelope[T]{
		Data:       data,
		Page:       page,
		TotalCount: total,
	}
}
