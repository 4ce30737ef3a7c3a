package repository

import (
	"math"

	"gorm.io/gorm"
)

// Page is the common list result shape: the window of rows, the unpaginated
// total under the same predicate, and the derived page count.
type Page[T any] struct {
	Data      []T   `json:"data"`
	Total     int64 `json:"total"`
	PageCount int   `json:"page_count"`
}

// PageCount computes ceil(total/perPage). Unbounded lists report a single
// page whenever any rows exist.
func PageCount(total int64, perPage int) int {
	if perPage <= 0 {
		if total > 0 {
			return 1
		}
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

// List runs the count and window queries for a filtered base query. Both
// statements are derived from the same predicate; ordering and the
// offset/limit window apply only to the data query. preloads are relation
// names eager-loaded onto the result rows.
func List[T any](base *gorm.DB, p ListParams, columns SortMap, preloads ...string) (Page[T], error) {
	var page Page[T]

	if err := base.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return page, err
	}

	tx := ApplySort(base.Session(&gorm.Session{}), p.Sort, columns, "")
	for _, preload := range preloads {
		tx = tx.Preload(preload)
	}

	if p.Mode == ModePaginated {
		perPage := p.PerPage
		if perPage <= 0 {
			perPage = DefaultPerPage
		}
		tx = tx.Offset((p.Page - 1) * perPage).Limit(perPage)
		page.PageCount = PageCount(page.Total, perPage)
	} else {
		page.PageCount = PageCount(page.Total, 0)
	}

	page.Data = []T{}
	if err := tx.Find(&page.Data).Error; err != nil {
		return page, err
	}
	return page, nil
}

// CountByColumn returns row counts grouped by an enum column under the
// base query's predicate. Callers building metadata breakdowns must strip
// the broken-down field from the filter set first (ListParams.WithoutFilter)
// so the category counts stay consistent with the overall total.
func CountByColumn(base *gorm.DB, column string) (map[string]int64, error) {
	type bucket struct {
		Key   string
		Count int64
	}
	var rows []bucket
	err := base.Session(&gorm.Session{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}
