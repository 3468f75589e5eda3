// Package postgres provides a PostgreSQL implementation of the accessmatrix
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/rule"
	"github.com/xraph/accessmatrix/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite accessmatrix store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("accessmatrix/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("accessmatrix/postgres: migration failed: %w", err)
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

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. Drivers that flatten the error lose the SQLSTATE, so the
// message is checked as well.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

// ──────────────────────────────────────────────────
// Rule operations
// ──────────────────────────────────────────────────

func (s *Store) InsertRule(ctx context.Context, r *rule.Rule) error {
	r.ID = 0
	r.CreatedAt = time.Now().UTC()
	m := ruleToModel(r)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("accessmatrix: insert rule: %w", rule.ErrDuplicate)
		}
		return fmt.Errorf("accessmatrix: insert rule: %w", err)
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
	err := s.pgdb.NewSelect(m).Where("id = ?", ruleID).Scan(ctx)
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
	err := s.pgdb.NewSelect(m).
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
	res, err := s.pgdb.NewDelete((*ruleModel)(nil)).
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
	if err := s.pgdb.NewSelect(&models).OrderExpr("id ASC").Scan(ctx); err != nil {
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
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("accessmatrix: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID int64) (*directory.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", roleID).Scan(ctx)
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
	err := s.pgdb.NewSelect(&models).
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
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("accessmatrix: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*directory.User, error) {
	m := new(userModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", userID).Scan(ctx)
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
	err := s.pgdb.NewSelect(&models).
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
