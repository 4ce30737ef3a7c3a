package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Postgres error codes for the constraint classes the API translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ConstraintMap maps a constraint name (or a substring of it, typically the
// column name) to the API field the violation should be reported under.
type ConstraintMap map[string]string

// FieldErrors translates known persistence-constraint violations into a
// field-keyed error map, returned as data rather than thrown. defaultField
// receives the message when the violated constraint cannot be matched.
// Unrecognized errors return nil and must propagate unchanged.
func FieldErrors(err error, constraints ConstraintMap, defaultField string) map[string][]string {
	if err == nil {
		return nil
	}
	if defaultField == "" {
		defaultField = "_form"
	}

	field := func(constraint string) string {
		for needle, f := range constraints {
			if strings.Contains(constraint, needle) {
				return f
			}
		}
		return defaultField
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		switch pgxErr.Code {
		case pgUniqueViolation:
			f := field(pgxErr.ConstraintName)
			return map[string][]string{f: {"already exists"}}
		case pgForeignKeyViolation:
			f := field(pgxErr.ConstraintName)
			return map[string][]string{f: {"referenced record not found"}}
		}
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			f := field(pqErr.Constraint)
			return map[string][]string{f: {"already exists"}}
		case pgForeignKeyViolation:
			f := field(pqErr.Constraint)
			return map[string][]string{f: {"referenced record not found"}}
		}
		return nil
	}

	// Dialect-independent translations (TranslateError is enabled on the
	// gorm config, so these also cover the sqlite test databases).
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return map[string][]string{defaultField: {"already exists"}}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return map[string][]string{defaultField: {"referenced record not found"}}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return map[string][]string{defaultField: {"not found"}}
	}

	return nil
}
