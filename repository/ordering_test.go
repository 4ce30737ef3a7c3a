package repository

import (
	"strings"
	"testing"
)

func TestSortMapFallback(t *testing.T) {
	qualified := SortMap{"created_at": "tickets.created_at", "subject": "tickets.subject"}
	if got := qualified.Fallback(); got != "tickets.created_at DESC" {
		t.Errorf("Fallback() = %q, want tickets.created_at DESC", got)
	}

	if got := (SortMap{"subject": "tickets.subject"}).Fallback(); got != DefaultOrder {
		t.Errorf("Fallback() = %q, want %q", got, DefaultOrder)
	}
}

func TestApplySortFallbackQualifiedOnJoinedQuery(t *testing.T) {
	db := dryRunDB(t)

	columns := SortMap{"created_at": "tickets.created_at", "owner": "owners.name"}
	tx := db.Model(&ticket{}).
		Joins("LEFT JOIN owners ON owners.id = tickets.owner_id")

	// No recognized sort: the fallback must name the base table, since the
	// joined table may carry its own created_at column.
	sql, _ := buildSQL(t, ApplySort(tx, nil, columns, ""))
	if !strings.Contains(sql, "ORDER BY tickets.created_at DESC") {
		t.Errorf("fallback order not table-qualified: %s", sql)
	}
}

func TestApplySortUnknownColumnFallsBackQualified(t *testing.T) {
	db := dryRunDB(t)

	columns := SortMap{"created_at": "tickets.created_at"}
	tx := ApplySort(db.Model(&ticket{}), []SortField{{Column: "bogus", Desc: true}}, columns, "")

	sql, _ := buildSQL(t, tx)
	if !strings.Contains(sql, "ORDER BY tickets.created_at DESC") {
		t.Errorf("unknown sort column should fall back to the qualified default: %s", sql)
	}
}
