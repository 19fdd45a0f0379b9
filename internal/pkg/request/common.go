package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds the zero-based paging parameters shared by list endpoints.
// Pointers distinguish "not sent" from an explicit zero.
type ListParams struct {
	PageSize *int `form:"page_size"`
	Page     *int `form:"page"`
}

// Values returns the page size and zero-based index, applying defaultSize when
// the page size was not sent.
func (p ListParams) Values(defaultSize int) (pageSize, page int) {
	pageSize = defaultSize
	if p.PageSize != nil {
		pageSize = *p.PageSize
	}
	if p.Page != nil {
		page = *p.Page
	}
	return pageSize, page
}
