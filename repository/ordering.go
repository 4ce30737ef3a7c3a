package repository

import (
	"gorm.io/gorm"
)

// SortMap maps external sort column ids to SQL order expressions. Columns
// backed by a joined entity (e.g. sorting quotes by client name) map to the
// joined field, not the foreign key value; the caller is responsible for
// adding the join to the base query.
type SortMap map[string]string

// DefaultOrder is the stable fallback ordering applied when no recognized
// sort column is requested and the sort map carries no created_at entry.
const DefaultOrder = "created_at DESC"

// Fallback returns the default ordering for the resource, derived from the
// map's created_at expression. Base queries join companies and quotes, which
// carry their own created_at columns, so the fallback must stay
// table-qualified or the query is ambiguous.
func (m SortMap) Fallback() string {
	if expr, ok := m["created_at"]; ok {
		return expr + " DESC"
	}
	return DefaultOrder
}

// ApplySort adds ORDER BY clauses for each recognized sort field in
// priority order (first entry is the primary key of the sort). Unknown
// column ids are skipped; if nothing matched, the fallback order applies.
func ApplySort(tx *gorm.DB, sorts []SortField, columns SortMap, fallback string) *gorm.DB {
	if fallback == "" {
		fallback = columns.Fallback()
	}

	applied := false
	for _, s := range sorts {
		expr, ok := columns[s.Column]
		if !ok {
			continue
		}
		if s.Desc {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		tx = tx.Order(expr)
		applied = true
	}

	if !applied {
		tx = tx.Order(fallback)
	}
	return tx
}
