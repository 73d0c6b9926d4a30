package domain

// FilterValue carries one submitted filter for a searchable field. Exact
// and substring clauses use Value; range clauses use From/To (either side
// may be empty for a half-open range).
type FilterValue struct {
	Value string `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// IsZero reports whether the filter carries no submitted value.
func (v FilterValue) IsZero() bool {
	return v.Value == "" && v.From == "" && v.To == ""
}

// SortRequest is an explicit sort choice from the request.
type SortRequest struct {
	FieldID   string        `json:"field_id"`
	Direction SortDirection `json:"direction"`
}

// RequestParams carries everything a caller submits for one listing:
// pagination, free-text search, per-field filters, sorting and the selected
// quick filter. There is no hidden default state; callers always pass a
// complete value.
type RequestParams struct {
	Page        int                    `json:"page"`
	PageSize    int                    `json:"page_size"`
	Search      string                 `json:"search,omitempty"`
	Filters     map[string]FilterValue `json:"filters,omitempty"`
	Sort        *SortRequest           `json:"sort,omitempty"`
	QuickFilter string                 `json:"quick_filter,omitempty"`
}
