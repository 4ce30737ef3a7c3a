package repository

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// RelationNone is the sentinel filter value meaning "no related row exists"
// (e.g. quotes with no linked RFQ). It is distinct from an absent parameter,
// which applies no constraint at all; the two must never be conflated.
const RelationNone = "null"

// ApplyTextFilter adds a case-insensitive substring condition. Empty values
// apply no constraint.
func ApplyTextFilter(tx *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return tx
	}
	return tx.Where(column+" ILIKE ?", "%"+value+"%")
}

// ApplyIDSetFilter adds a set-membership condition from a comma-joined id
// list. An empty or all-invalid list applies no constraint, never
// "match nothing".
func ApplyIDSetFilter(tx *gorm.DB, column, raw string) *gorm.DB {
	ids := ParseIDs(raw)
	if len(ids) == 0 {
		return tx
	}
	return tx.Where(column+" IN ?", ids)
}

// ApplyEnumSetFilter adds a set-membership condition from a comma-joined
// list of enum values.
func ApplyEnumSetFilter(tx *gorm.DB, column, raw string) *gorm.DB {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return tx
	}
	return tx.Where(column+" IN ?", values)
}

// ApplyDateFilter adds a range condition from the three accepted date
// encodings: a single epoch-millisecond string (expanded to that day's
// bounds in server-local time), or a comma-joined epoch pair (explicit
// range). Malformed input degrades silently to no constraint.
func ApplyDateFilter(tx *gorm.DB, column, raw string) *gorm.DB {
	from, to, ok := ParseDateFilter(raw)
	if !ok {
		return tx
	}
	return tx.Where(column+" >= ? AND "+column+" <= ?", from, to)
}

// ParseDateFilter resolves a raw date filter value to an inclusive
// [from, to] range. Returns ok=false when the value cannot be parsed.
func ParseDateFilter(raw string) (from, to time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, time.Time{}, false
	}

	parts := strings.Split(raw, ",")
	switch len(parts) {
	case 1:
		ms, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		t := time.UnixMilli(ms).Local()
		from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		to = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, time.Local)
		return from, to, true
	case 2:
		fromMs, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		toMs, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err1 != nil || err2 != nil {
			return time.Time{}, time.Time{}, false
		}
		return time.UnixMilli(fromMs).Local(), time.UnixMilli(toMs).Local(), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// ApplyRelationFilter handles a nullable foreign-key filter. The
// RelationNone sentinel selects rows where the relation is absent; any
// other value filters by related ids. An absent parameter applies no
// constraint.
func ApplyRelationFilter(tx *gorm.DB, column, raw string) *gorm.DB {
	if raw == "" {
		return tx
	}
	if raw == RelationNone {
		return tx.Where(column + " IS NULL")
	}
	return ApplyIDSetFilter(tx, column, raw)
}

// ParseIDs reads a comma-joined id list, skipping blank or non-numeric
// entries.
func ParseIDs(raw string) []uint {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}
