package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pg unique", &pgconn.PgError{Code: "23505", ConstraintName: "am_rules_tuple_key"}, true},
		{"wrapped pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pg check", &pgconn.PgError{Code: "23514"}, false},
		{"flattened", errors.New(`ERROR: duplicate key value violates unique constraint "am_rules_tuple_key"`), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: isUniqueViolation = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMigrationsRegistered(t *testing.T) {
	if Migrations == nil {
		t.Fatal("expected migration group")
	}
}
