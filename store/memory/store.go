// Package memory provides an in-memory implementation of the accessmatrix
// composite store. It is intended for testing, development, and
// single-process deployments.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/rule"
	"github.com/xraph/accessmatrix/store"
)

// Compile-time interface checks.
var (
	_ rule.Store      = (*Store)(nil)
	_ directory.Store = (*Store)(nil)
	_ store.Store     = (*Store)(nil)
)

// Store is a thread-safe in-memory store for rules, roles, and users.
type Store struct {
	mu sync.RWMutex

	rules   map[int64]*rule.Rule
	byTuple map[rule.Tuple]int64
	order   []int64 // rule IDs in insertion order
	lastID  int64

	roles map[int64]*directory.Role
	users map[int64]*directory.User
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		rules:   make(map[int64]*rule.Rule),
		byTuple: make(map[rule.Tuple]int64),
		roles:   make(map[int64]*directory.Role),
		users:   make(map[int64]*directory.User),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Rule Store
// ──────────────────────────────────────────────────

func (s *Store) InsertRule(_ context.Context, r *rule.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := r.Tuple()
	if existing, ok := s.byTuple[t]; ok {
		return fmt.Errorf("rule %d: %w", existing, rule.ErrDuplicate)
	}
	s.lastID++
	r.ID = s.lastID
	r.CreatedAt = time.Now().UTC()
	s.rules[r.ID] = copyRule(r)
	s.byTuple[t] = r.ID
	s.order = append(s.order, r.ID)
	return nil
}

func (s *Store) GetRule(_ context.Context, ruleID int64) (*rule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return nil, fmt.Errorf("rule %d: %w", ruleID, rule.ErrNotFound)
	}
	return copyRule(r), nil
}

func (s *Store) FindRuleByTuple(_ context.Context, t rule.Tuple) (*rule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ruleID, ok := s.byTuple[t]
	if !ok {
		return nil, fmt.Errorf("rule %s/%d %s:%s: %w", t.SubjectType, t.SubjectID, t.Module, t.Permission, rule.ErrNotFound)
	}
	return copyRule(s.rules[ruleID]), nil
}

func (s *Store) DeleteRule(_ context.Context, ruleID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return false, nil
	}
	delete(s.rules, ruleID)
	delete(s.byTuple, r.Tuple())
	for i, oid := range s.order {
		if oid == ruleID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *Store) ListRules(_ context.Context) ([]*rule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*rule.Rule, 0, len(s.order))
	for _, ruleID := range s.order {
		result = append(result, copyRule(s.rules[ruleID]))
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Directory Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *directory.Role) error {
	if r.ID <= 0 {
		return fmt.Errorf("accessmatrix: create role %q: id is required", r.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID]; ok {
		return fmt.Errorf("accessmatrix: create role: role %d already exists", r.ID)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	c := *r
	s.roles[r.ID] = &c
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID int64) (*directory.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID]
	if !ok {
		return nil, fmt.Errorf("role %d: %w", roleID, directory.ErrNotFound)
	}
	c := *r
	return &c, nil
}

func (s *Store) FindRolesByName(_ context.Context, name string) ([]*directory.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*directory.Role
	for _, r := range s.roles {
		if strings.EqualFold(r.Name, name) {
			c := *r
			result = append(result, &c)
		}
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, u *directory.User) error {
	if u.ID <= 0 {
		return fmt.Errorf("accessmatrix: create user %q: id is required", u.Email)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("accessmatrix: create user: user %d already exists", u.ID)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (*directory.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, directory.ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (s *Store) FindUsersByEmail(_ context.Context, email string) ([]*directory.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*directory.User
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			result = append(result, &c)
		}
	}
	return result, nil
}

// RenameRole changes a role's name. It exists so tests and development
// tooling can simulate upstream directory changes.
func (s *Store) RenameRole(_ context.Context, roleID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[roleID]
	if !ok {
		return fmt.Errorf("role %d: %w", roleID, directory.ErrNotFound)
	}
	r.Name = name
	return nil
}

func copyRule(r *rule.Rule) *rule.Rule {
	c := *r
	return &c
}
