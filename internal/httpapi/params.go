package httpapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/stelform/adminkit/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 1000
)

// parseRequestParams maps URL query parameters onto listing parameters.
// Reserved keys carry pagination, search, sort and the quick filter; every
// other key is treated as a per-field filter. Range filters use the
// `<field>_from` / `<field>_to` suffixes.
func parseRequestParams(q url.Values) domain.RequestParams {
	page := 1
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			page = n
		}
	}

	pageSize := defaultPageSize
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= maxPageSize {
			pageSize = n
		}
	}

	var sortReq *domain.SortRequest
	if v := strings.TrimSpace(q.Get("sort")); v != "" {
		direction := domain.SortDirectionAsc
		if strings.HasPrefix(v, "-") {
			direction = domain.SortDirectionDesc
			v = strings.TrimPrefix(v, "-")
		} else {
			v = strings.TrimPrefix(v, "+")
		}
		if v != "" {
			sortReq = &domain.SortRequest{FieldID: v, Direction: direction}
		}
	}

	filters := make(map[string]domain.FilterValue)
	setFilter := func(field string, apply func(domain.FilterValue) domain.FilterValue) {
		filters[field] = apply(filters[field])
	}
	for key, vals := range q {
		switch key {
		case "page", "page_size", "sort", "q", "quick":
			continue
		}
		value := ""
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				value = v
				break
			}
		}
		if value == "" {
			continue
		}

		switch {
		case strings.HasSuffix(key, "_from"):
			field := strings.TrimSuffix(key, "_from")
			setFilter(field, func(f domain.FilterValue) domain.FilterValue {
				f.From = value
				return f
			})
		case strings.HasSuffix(key, "_to"):
			field := strings.TrimSuffix(key, "_to")
			setFilter(field, func(f domain.FilterValue) domain.FilterValue {
				f.To = value
				return f
			})
		default:
			setFilter(key, func(f domain.FilterValue) domain.FilterValue {
				f.Value = value
				return f
			})
		}
	}
	if len(filters) == 0 {
		filters = nil
	}

	return domain.RequestParams{
		Page:        page,
		PageSize:    pageSize,
		Search:      strings.TrimSpace(q.Get("q")),
		Filters:     filters,
		Sort:        sortReq,
		QuickFilter: strings.TrimSpace(q.Get("quick")),
	}
}
