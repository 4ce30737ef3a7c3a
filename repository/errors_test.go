package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestFieldErrorsPgxUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_quotes_reference_number"}
	constraints := ConstraintMap{"reference_number": "reference_number"}

	fields := FieldErrors(err, constraints, "quote")
	if fields == nil {
		t.Fatal("expected field errors for unique violation")
	}
	if len(fields["reference_number"]) != 1 || fields["reference_number"][0] != "already exists" {
		t.Errorf("fields = %v, want reference_number: already exists", fields)
	}
}

func TestFieldErrorsPgxUnmatchedConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_something_else"}
	fields := FieldErrors(err, ConstraintMap{"name": "name"}, "")
	if len(fields["_form"]) != 1 {
		t.Errorf("unmatched constraint should fall back to _form, got %v", fields)
	}
}

func TestFieldErrorsPqForeignKey(t *testing.T) {
	err := &pq.Error{Code: "23503", Constraint: "fk_quotes_client"}
	fields := FieldErrors(err, ConstraintMap{"client": "client_id"}, "")
	if len(fields["client_id"]) != 1 || fields["client_id"][0] != "referenced record not found" {
		t.Errorf("fields = %v, want client_id: referenced record not found", fields)
	}
}

func TestFieldErrorsWrappedSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), "already exists"},
		{fmt.Errorf("create: %w", gorm.ErrForeignKeyViolated), "referenced record not found"},
		{gorm.ErrRecordNotFound, "not found"},
	}
	for _, tc := range cases {
		fields := FieldErrors(tc.err, nil, "name")
		if len(fields["name"]) != 1 || fields["name"][0] != tc.want {
			t.Errorf("FieldErrors(%v) = %v, want name: %q", tc.err, fields, tc.want)
		}
	}
}

func TestFieldErrorsUnrecognized(t *testing.T) {
	if fields := FieldErrors(errors.New("connection reset"), nil, ""); fields != nil {
		t.Errorf("unrecognized errors must propagate, got %v", fields)
	}
	if fields := FieldErrors(nil, nil, ""); fields != nil {
		t.Errorf("nil error must yield nil, got %v", fields)
	}
	// Non-constraint postgres errors pass through too.
	if fields := FieldErrors(&pgconn.PgError{Code: "57014"}, nil, ""); fields != nil {
		t.Errorf("non-constraint pg error must propagate, got %v", fields)
	}
}
