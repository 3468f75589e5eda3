package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/rule"
)

func newRule(subjectType rule.SubjectType, subjectID int64, module string, perm rule.Permission) *rule.Rule {
	return &rule.Rule{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Module:      module,
		Permission:  perm,
	}
}

func TestRuleCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := newRule(rule.SubjectRole, 7, "appointments", rule.PermissionView)
	r.SubjectDisplay = "staff"

	// Insert
	if err := s.InsertRule(ctx, r); err != nil {
		t.Fatal(err)
	}
	if r.ID != 1 {
		t.Fatalf("expected id 1, got %d", r.ID)
	}
	if r.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	// Get
	got, err := s.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SubjectDisplay != "staff" {
		t.Fatalf("expected staff, got %s", got.SubjectDisplay)
	}

	// FindByTuple
	got, err = s.FindRuleByTuple(ctx, r.Tuple())
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != r.ID {
		t.Fatal("tuple lookup mismatch")
	}

	// Delete
	existed, err := s.DeleteRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !existed {
		t.Fatal("expected rule to exist before delete")
	}
	_, err = s.GetRule(ctx, r.ID)
	if !errors.Is(err, rule.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	_, err = s.FindRuleByTuple(ctx, r.Tuple())
	if !errors.Is(err, rule.ErrNotFound) {
		t.Fatalf("expected tuple lookup to miss after delete, got %v", err)
	}
}

func TestInsertRuleRejectsDuplicateTuple(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.InsertRule(ctx, newRule(rule.SubjectUser, 3, "invites", rule.PermissionManage)); err != nil {
		t.Fatal(err)
	}
	err := s.InsertRule(ctx, newRule(rule.SubjectUser, 3, "invites", rule.PermissionManage))
	if !errors.Is(err, rule.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same subject id under the other subject type is a different tuple.
	if err := s.InsertRule(ctx, newRule(rule.SubjectRole, 3, "invites", rule.PermissionManage)); err != nil {
		t.Fatal(err)
	}

	list, _ := s.ListRules(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(list))
	}
}

func TestDeleteMissingRule(t *testing.T) {
	s := New()
	existed, err := s.DeleteRule(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Fatal("expected missing rule to report false")
	}
}

func TestRuleIDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := newRule(rule.SubjectRole, 1, "appointments", rule.PermissionView)
	b := newRule(rule.SubjectRole, 1, "appointments", rule.PermissionEdit)
	_ = s.InsertRule(ctx, a)
	_ = s.InsertRule(ctx, b)

	if _, err := s.DeleteRule(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	c := newRule(rule.SubjectRole, 1, "appointments", rule.PermissionEdit)
	if err := s.InsertRule(ctx, c); err != nil {
		t.Fatal(err)
	}
	if c.ID == b.ID {
		t.Fatalf("expected a fresh id, got reused %d", c.ID)
	}
	if c.ID != 3 {
		t.Fatalf("expected id 3, got %d", c.ID)
	}
}

func TestListRulesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	modules := []string{"zeta", "alpha", "mid", "beta"}
	for _, m := range modules {
		if err := s.InsertRule(ctx, newRule(rule.SubjectRole, 1, m, rule.PermissionView)); err != nil {
			t.Fatal(err)
		}
	}
	_, _ = s.DeleteRule(ctx, 2)

	list, err := s.ListRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"zeta", "mid", "beta"}
	if len(list) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(list))
	}
	for i, r := range list {
		if r.Module != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], r.Module)
		}
	}
}

func TestListRulesReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.InsertRule(ctx, newRule(rule.SubjectRole, 1, "appointments", rule.PermissionView))

	list, _ := s.ListRules(ctx)
	list[0].Module = "mutated"

	got, _ := s.GetRule(ctx, 1)
	if got.Module != "appointments" {
		t.Fatal("store state was mutated through a listed rule")
	}
}

func TestConcurrentInsertSameTuple(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.InsertRule(ctx, newRule(rule.SubjectUser, 9, "appointments", rule.PermissionEdit))
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, rule.ErrDuplicate):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly 1 insert to succeed, got %d", created)
	}
}

func TestDirectoryLookups(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.CreateRole(ctx, &directory.Role{ID: 1, Name: "Manager"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, &directory.User{ID: 10, Email: "Dentist@Example.com", RoleID: 1}); err != nil {
		t.Fatal(err)
	}

	roles, err := s.FindRolesByName(ctx, "manager")
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 || roles[0].ID != 1 {
		t.Fatalf("expected role 1, got %v", roles)
	}

	users, err := s.FindUsersByEmail(ctx, "dentist@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].RoleID != 1 {
		t.Fatalf("expected user 10 with role 1, got %v", users)
	}

	none, _ := s.FindRolesByName(ctx, "manage")
	if len(none) != 0 {
		t.Fatal("expected exact match only")
	}

	if _, err := s.GetUser(ctx, 99); !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.CreateRole(ctx, &directory.Role{Name: "no-id"}); err == nil {
		t.Fatal("expected error for role without id")
	}
	if err := s.CreateRole(ctx, &directory.Role{ID: 1, Name: "again"}); err == nil {
		t.Fatal("expected error for duplicate role id")
	}

	if err := s.RenameRole(ctx, 1, "Lead"); err != nil {
		t.Fatal(err)
	}
	r, _ := s.GetRole(ctx, 1)
	if r.Name != "Lead" {
		t.Fatalf("expected Lead, got %s", r.Name)
	}
}

func TestMigratePingClose(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
