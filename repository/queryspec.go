package repository

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Pagination modes. The mode is always explicit: per_page=all selects
// ModeUnbounded, anything else (including an absent per_page) selects
// ModePaginated. Callers never infer "return everything" from a missing
// parameter.
type Mode string

const (
	ModePaginated Mode = "paginated"
	ModeUnbounded Mode = "unbounded"
)

// DefaultPerPage is the page size applied when the caller omits per_page.
const DefaultPerPage = 40

// Reserved query parameter names; everything else is treated as a filter.
const (
	paramPage    = "page"
	paramPerPage = "per_page"
	paramSort    = "sort"
)

// SortField is one entry of a priority-ordered sort list.
type SortField struct {
	Column string `json:"id" example:"value"`
	Desc   bool   `json:"desc" example:"true"`
}

// ListParams is the typed query spec for a table view: page, page size,
// sort columns and per-column filter values. It is parsed once at the HTTP
// boundary and carried unchanged through the builder functions, and its
// canonical encoding doubles as the cache key suffix, so distinct views
// never collide in the cache.
type ListParams struct {
	Page    int
	PerPage int
	Mode    Mode
	Sort    []SortField
	Filters url.Values
}

// ParseListParams builds a ListParams from raw URL query values.
// filterKeys names the parameters the resource accepts as filters; unknown
// parameters are dropped so stray query noise never reaches the builders.
func ParseListParams(query url.Values, filterKeys []string) ListParams {
	p := ListParams{
		Page:    1,
		PerPage: DefaultPerPage,
		Mode:    ModePaginated,
		Filters: url.Values{},
	}

	if raw := query.Get(paramPage); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Page = n
		}
	}

	switch raw := query.Get(paramPerPage); {
	case raw == "all":
		p.Mode = ModeUnbounded
		p.PerPage = 0
	case raw != "":
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PerPage = n
		}
	}

	p.Sort = parseSort(query.Get(paramSort))

	for _, key := range filterKeys {
		if !query.Has(key) {
			continue
		}
		if v := query.Get(key); v != "" {
			p.Filters.Set(key, v)
		}
	}

	return p
}

// parseSort reads the "col:desc,col2:asc" wire format. Entries without a
// direction default to ascending; empty entries are skipped.
func parseSort(raw string) []SortField {
	if raw == "" {
		return nil
	}
	var sorts []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		col, dir, _ := strings.Cut(part, ":")
		if col == "" {
			continue
		}
		sorts = append(sorts, SortField{
			Column: col,
			Desc:   strings.EqualFold(dir, "desc"),
		})
	}
	return sorts
}

// Encode renders the canonical query string for these params: reserved
// parameters first, then filters in sorted key order. Parsing the result
// yields an identical ListParams (round-trip stability).
func (p ListParams) Encode() string {
	var b strings.Builder

	b.WriteString(paramPage + "=" + strconv.Itoa(p.Page))
	if p.Mode == ModeUnbounded {
		b.WriteString("&" + paramPerPage + "=all")
	} else {
		b.WriteString("&" + paramPerPage + "=" + strconv.Itoa(p.PerPage))
	}

	if len(p.Sort) > 0 {
		parts := make([]string, len(p.Sort))
		for i, s := range p.Sort {
			dir := "asc"
			if s.Desc {
				dir = "desc"
			}
			parts[i] = s.Column + ":" + dir
		}
		b.WriteString("&" + paramSort + "=" + url.QueryEscape(strings.Join(parts, ",")))
	}

	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("&" + url.QueryEscape(k) + "=" + url.QueryEscape(p.Filters.Get(k)))
	}

	return b.String()
}

// CacheKey returns the cache entry key for a resource under these params.
func (p ListParams) CacheKey(resource string) string {
	return resource + "?" + p.Encode()
}

// WithoutPagination strips paging state, keeping filters and sort. Exports
// and metadata queries use this so they share the list's filter shape.
func (p ListParams) WithoutPagination() ListParams {
	out := p
	out.Page = 1
	out.PerPage = 0
	out.Mode = ModeUnbounded
	return out
}

// WithoutFilter drops a single filter key. Metadata breakdowns use this so
// the category counts stay consistent with the overall total instead of
// double-filtering on the broken-down field.
func (p ListParams) WithoutFilter(key string) ListParams {
	out := p
	out.Filters = url.Values{}
	for k, vs := range p.Filters {
		if k == key {
			continue
		}
		for _, v := range vs {
			out.Filters.Add(k, v)
		}
	}
	return out
}
