// Package sqlite provides a SQLite implementation of the accessmatrix
// composite store using grove ORM with Go-based migrations.
//
// SQLite admits one writer at a time. Open file databases with a busy
// timeout so concurrent grants wait for the lock instead of failing with
// SQLITE_BUSY:
//
//	drv := sqlitedriver.New()
//	err := drv.Open(ctx, "file:access.db?_pragma=busy_timeout(5000)")
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	_ "github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/rule"
	"github.com/xraph/accessmatrix/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a SQLite implementation of the composite accessmatrix store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("accessmatrix/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("accessmatrix/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ──────────────────────────────────────────────────
// Rule operations
// ──────────────────────────────────────────────────

func (s *Store) InsertRule(ctx context.Context, r *rule.Rule) error {
	r.ID = 0
	r.CreatedAt = time.Now().UTC()
	m := ruleToModel(r)
	res, err := s.sdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("accessmatrix: insert rule: %w", rule.ErrDuplicate)
		}
		return fmt.Errorf("accessmatrix: insert rule: %w", err)
	}
	if m.ID == 0 {
		if id, idErr := res.LastInsertId(); idErr == nil {
			m.ID = id
		}
	}
	if m.ID != 0 {
		r.ID = m.ID
		return nil
	}

	// The driver did not report the generated key; read it back by tuple.
	stored, err := s.FindRuleByTuple(ctx, r.Tuple())
	if err != nil {
		return fmt.Errorf("accessmatrix: insert rule: read back id: %w", err)
	}
	r.ID = stored.ID
	return nil
}

func (s *Store) GetRule(ctx context.Context, ruleID int64) (*rule.Rule, error) {
	m := new(ruleModel)
	err := s.sdb.NewSelect(m).Where("id = ?", ruleID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("rule %d: %w", ruleID, rule.ErrNotFound)
		}
		return nil, fmt.Errorf("accessmatrix: get rule: %w", err)
	}
	return ruleFromModel(m), nil
}

func (s *Store) FindRuleByTuple(ctx context.Context, t rule.Tuple) (*rule.Rule, error) {
	m := new(ruleModel)
	err := s.sdb.NewSelect(m).
		Where("subject_type = ?", string(t.SubjectType)).
		Where("subject_id = ?", t.SubjectID).
		Where("module = ?", t.Module).
		Where("permission = ?", string(t.Permission)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("rule %s/%d %s:%s: %w", t.SubjectType, t.SubjectID, t.Module, t.Permission, rule.ErrNotFound)
		}
		return nil, fmt.Errorf("accessmatrix: find rule: %w", err)
	}
	return ruleFromModel(m), nil
}

func (s *Store) DeleteRule(ctx context.Context, ruleID int64) (bool, error) {
	res, err := s.sdb.NewDelete((*ruleModel)(nil)).
		Where("id = ?", ruleID).Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("accessmatrix: delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("accessmatrix: delete rule: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListRules(ctx context.Context) ([]*rule.Rule, error) {
	var models []ruleModel
	if err := s.sdb.NewSelect(&models).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("accessmatrix: list rules: %w", err)
	}
	result := make([]*rule.Rule, len(models))
	for i := range models {
		result[i] = ruleFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Directory operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *directory.Role) error {
	if r.ID <= 0 {
		return fmt.Errorf("accessmatrix: create role %q: id is required", r.Name)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m := &roleModel{ID: r.ID, Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("accessmatrix: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID int64) (*directory.Role, error) {
	m := new(roleModel)
	err := s.sdb.NewSelect(m).Where("id = ?", roleID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("role %d: %w", roleID, directory.ErrNotFound)
		}
		return nil, fmt.Errorf("accessmatrix: get role: %w", err)
	}
	return roleFromModel(m), nil
}

func (s *Store) FindRolesByName(ctx context.Context, name string) ([]*directory.Role, error) {
	var models []roleModel
	err := s.sdb.NewSelect(&models).
		Where("LOWER(name) = LOWER(?)", name).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessmatrix: find roles by name: %w", err)
	}
	result := make([]*directory.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, u *directory.User) error {
	if u.ID <= 0 {
		return fmt.Errorf("accessmatrix: create user %q: id is required", u.Email)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m := &userModel{ID: u.ID, Email: u.Email, Username: u.Username, RoleID: u.RoleID, CreatedAt: u.CreatedAt}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("accessmatrix: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*directory.User, error) {
	m := new(userModel)
	err := s.sdb.NewSelect(m).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("user %d: %w", userID, directory.ErrNotFound)
		}
		return nil, fmt.Errorf("accessmatrix: get user: %w", err)
	}
	return userFromModel(m), nil
}

func (s *Store) FindUsersByEmail(ctx context.Context, email string) ([]*directory.User, error) {
	var models []userModel
	err := s.sdb.NewSelect(&models).
		Where("LOWER(email) = LOWER(?)", email).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessmatrix: find users by email: %w", err)
	}
	result := make([]*directory.User, len(models))
	for i := range models {
		result[i] = userFromModel(&models[i])
	}
	return result, nil
}
