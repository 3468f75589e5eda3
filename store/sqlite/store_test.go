package sqlite

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/accessmatrix/rule"
)

func TestIsUniqueViolation(t *testing.T) {
	if isUniqueViolation(nil) {
		t.Fatal("nil is not a violation")
	}
	err := fmt.Errorf("exec: %w", errors.New("UNIQUE constraint failed: am_rules.subject_type, am_rules.subject_id, am_rules.module, am_rules.permission"))
	if !isUniqueViolation(err) {
		t.Fatal("expected unique violation")
	}
	if isUniqueViolation(errors.New("CHECK constraint failed: module <> ''")) {
		t.Fatal("check constraint is not a unique violation")
	}
}

func TestRuleModelRoundTrip(t *testing.T) {
	r := &rule.Rule{
		ID:             7,
		SubjectType:    rule.SubjectUser,
		SubjectID:      42,
		SubjectDisplay: "alice@example.com",
		Module:         "invites",
		Permission:     rule.PermissionEdit,
	}
	got := ruleFromModel(ruleToModel(r))
	if *got != *r {
		t.Fatalf("round trip: got %+v, want %+v", got, r)
	}
}
