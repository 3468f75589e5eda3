package accessmatrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/plugin"
	"github.com/xraph/accessmatrix/rule"
	"github.com/xraph/accessmatrix/store"
)

// Service is the access matrix. It resolves subjects against the role and
// user directories, validates requests, and executes grant, revoke, and list
// against the rule store.
type Service struct {
	store   store.Store
	roles   directory.RoleDirectory
	users   directory.UserDirectory
	cache   Cache
	plugins *plugin.Registry
	logger  *slog.Logger
	config  Config

	// gen counts rule changes. A decision is cached only if no change
	// happened while it was computed.
	gen     atomic.Uint64
	cacheMu sync.RWMutex
}

// NewService creates a new Service with the given options.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		return nil, errors.New("accessmatrix: store is required")
	}
	if s.roles == nil {
		s.roles = s.store
	}
	if s.users == nil {
		s.users = s.store
	}
	return s, nil
}

// Store returns the underlying composite store.
func (s *Service) Store() store.Store { return s.store }

// Config returns the service configuration.
func (s *Service) Config() Config { return s.config }

// Plugins returns the plugin registry (may be nil).
func (s *Service) Plugins() *plugin.Registry { return s.plugins }

// Start performs any startup initialization.
func (s *Service) Start(_ context.Context) error { return nil }

// Stop notifies shutdown hooks.
func (s *Service) Stop(ctx context.Context) error {
	if s.plugins != nil {
		s.plugins.EmitShutdown(ctx)
	}
	return nil
}

// ResolveSubject turns a subject reference into a concrete role or user.
// Role names and user emails are matched case-insensitively and exactly.
func (s *Service) ResolveSubject(ctx context.Context, subjectType, value string) (*Subject, error) {
	st := rule.SubjectType(strings.ToLower(strings.TrimSpace(subjectType)))
	value = strings.TrimSpace(value)

	switch st {
	case rule.SubjectRole:
		if value == "" {
			return nil, fmt.Errorf("%w: role name is empty", ErrSubjectNotFound)
		}
		roles, err := s.roles.FindRolesByName(ctx, value)
		if err != nil {
			return nil, fmt.Errorf("%w: find role %q: %w", ErrDirectoryUnavailable, value, err)
		}
		switch len(roles) {
		case 0:
			return nil, fmt.Errorf("%w: no role named %q", ErrSubjectNotFound, value)
		case 1:
			return &Subject{Type: rule.SubjectRole, ID: roles[0].ID, Display: roles[0].Name}, nil
		default:
			return nil, fmt.Errorf("%w: %d roles named %q", ErrAmbiguousSubject, len(roles), value)
		}

	case rule.SubjectUser:
		if value == "" {
			return nil, fmt.Errorf("%w: user email is empty", ErrSubjectNotFound)
		}
		users, err := s.users.FindUsersByEmail(ctx, value)
		if err != nil {
			return nil, fmt.Errorf("%w: find user %q: %w", ErrDirectoryUnavailable, value, err)
		}
		switch len(users) {
		case 0:
			return nil, fmt.Errorf("%w: no user with email %q", ErrSubjectNotFound, value)
		case 1:
			return &Subject{Type: rule.SubjectUser, ID: users[0].ID, Display: users[0].Email}, nil
		default:
			return nil, fmt.Errorf("%w: %d users with email %q", ErrAmbiguousSubject, len(users), value)
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidSubjectType, subjectType)
}

// Grant creates the rule described by req, or returns the existing rule with
// the same subject, module, and permission. created reports whether a new
// rule was stored.
func (s *Service) Grant(ctx context.Context, req GrantRequest) (r *rule.Rule, created bool, err error) {
	module := strings.TrimSpace(req.Module)
	if module == "" {
		return nil, false, fmt.Errorf("%w: module is required", ErrValidation)
	}
	if strings.TrimSpace(req.Permission) == "" {
		return nil, false, fmt.Errorf("%w: permission is required", ErrValidation)
	}
	perm, ok := rule.ParsePermission(req.Permission)
	if !ok {
		return nil, false, fmt.Errorf("%w: unrecognized permission %q", ErrValidation, req.Permission)
	}

	subj, err := s.ResolveSubject(ctx, req.SubjectType, req.Subject)
	if err != nil {
		return nil, false, err
	}

	t := rule.Tuple{
		SubjectType: subj.Type,
		SubjectID:   subj.ID,
		Module:      module,
		Permission:  perm,
	}
	existing, err := s.findRule(ctx, t)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.logger.Debug("access rule already granted",
			slog.Int64("rule_id", existing.ID),
			slog.String("subject_type", string(t.SubjectType)),
			slog.Int64("subject_id", t.SubjectID),
		)
		return existing, false, nil
	}

	r = &rule.Rule{
		SubjectType:    t.SubjectType,
		SubjectID:      t.SubjectID,
		SubjectDisplay: subj.Display,
		Module:         t.Module,
		Permission:     t.Permission,
	}
	if err := s.store.InsertRule(ctx, r); err != nil {
		if !errors.Is(err, rule.ErrDuplicate) {
			return nil, false, err
		}
		// Lost a race with a concurrent grant of the same tuple.
		existing, ferr := s.findRule(ctx, t)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing == nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	s.invalidate(ctx, r)
	s.logger.Info("access rule granted",
		slog.Int64("rule_id", r.ID),
		slog.String("subject_type", string(r.SubjectType)),
		slog.Int64("subject_id", r.SubjectID),
		slog.String("module", r.Module),
		slog.String("permission", string(r.Permission)),
	)
	if s.plugins != nil {
		s.plugins.EmitRuleGranted(ctx, r)
	}
	return r, true, nil
}

// Revoke deletes a rule. Revoking a rule that does not exist succeeds.
func (s *Service) Revoke(ctx context.Context, ruleID int64) error {
	// Get before delete for cache invalidation and hooks.
	existing, getErr := s.store.GetRule(ctx, ruleID)

	existed, err := s.store.DeleteRule(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("accessmatrix: delete rule %d: %w", ruleID, err)
	}
	if !existed {
		return nil
	}

	if getErr != nil || existing == nil {
		existing = &rule.Rule{ID: ruleID}
		if s.cache != nil {
			s.cache.Purge(ctx)
		}
	} else {
		s.invalidate(ctx, existing)
	}
	s.logger.Info("access rule revoked", slog.Int64("rule_id", ruleID))
	if s.plugins != nil {
		s.plugins.EmitRuleRevoked(ctx, existing)
	}
	return nil
}

// List returns the page-th page (1-based) of rules matching f, together with
// the number of matching rules. A page past the end is empty, not an error.
func (s *Service) List(ctx context.Context, f ListFilter, page, pageSize int) (*Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1, got %d", ErrValidation, page)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be at least 1, got %d", ErrValidation, pageSize)
	}
	cf, err := f.compile()
	if err != nil {
		return nil, err
	}

	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessmatrix: list rules: %w", err)
	}
	s.refreshDisplays(ctx, rules)

	matched := make([]*rule.Rule, 0, len(rules))
	for _, r := range rules {
		if cf.matches(r) {
			matched = append(matched, r)
		}
	}

	return paginate(matched, page, pageSize), nil
}

// HasAccess reports whether the user, directly or through their role, holds
// permission on module.
func (s *Service) HasAccess(ctx context.Context, userID int64, module, permission string) (bool, error) {
	module = strings.TrimSpace(module)
	if module == "" {
		return false, fmt.Errorf("%w: module is required", ErrValidation)
	}
	perm, ok := rule.ParsePermission(permission)
	if !ok {
		return false, fmt.Errorf("%w: unrecognized permission %q", ErrValidation, permission)
	}

	gen := s.gen.Load()
	if s.cache != nil {
		if allowed, hit := s.cache.Get(ctx, userID, module, perm); hit {
			s.emitChecked(ctx, plugin.Check{UserID: userID, Module: module, Permission: perm, Allowed: allowed, Cached: true})
			return allowed, nil
		}
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return false, fmt.Errorf("%w: user %d", ErrSubjectNotFound, userID)
		}
		return false, fmt.Errorf("%w: get user %d: %w", ErrDirectoryUnavailable, userID, err)
	}

	candidates := []rule.Tuple{{SubjectType: rule.SubjectUser, SubjectID: u.ID, Module: module, Permission: perm}}
	if u.RoleID != 0 {
		candidates = append(candidates, rule.Tuple{SubjectType: rule.SubjectRole, SubjectID: u.RoleID, Module: module, Permission: perm})
	}

	allowed := false
	for _, t := range candidates {
		r, err := s.findRule(ctx, t)
		if err != nil {
			return false, err
		}
		if r != nil {
			allowed = true
			break
		}
	}

	if s.cache != nil {
		s.cacheMu.RLock()
		if s.gen.Load() == gen {
			s.cache.Set(ctx, userID, module, perm, allowed)
		}
		s.cacheMu.RUnlock()
	}
	s.emitChecked(ctx, plugin.Check{UserID: userID, Module: module, Permission: perm, Allowed: allowed})
	return allowed, nil
}

// findRule looks up a tuple, returning nil when no rule matches.
func (s *Service) findRule(ctx context.Context, t rule.Tuple) (*rule.Rule, error) {
	r, err := s.store.FindRuleByTuple(ctx, t)
	if err != nil {
		if errors.Is(err, rule.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("accessmatrix: find rule: %w", err)
	}
	return r, nil
}

// invalidate drops cached decisions a change to r can affect. A role rule
// affects every member of the role, so the whole cache goes.
func (s *Service) invalidate(ctx context.Context, r *rule.Rule) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.gen.Add(1)
	if userID, ok := r.UserID(); ok {
		s.cache.InvalidateUser(ctx, userID)
		return
	}
	s.cache.Purge(ctx)
}

func (s *Service) emitChecked(ctx context.Context, c plugin.Check) {
	if s.plugins != nil {
		s.plugins.EmitAccessChecked(ctx, c)
	}
}

type subjectKey struct {
	t  rule.SubjectType
	id int64
}

// refreshDisplays replaces stored subject labels with current directory
// values. Lookups that fail keep the stored label.
func (s *Service) refreshDisplays(ctx context.Context, rules []*rule.Rule) {
	if !s.config.refreshDisplay() {
		for _, r := range rules {
			r.SubjectDisplay = displayOrFallback(r.SubjectDisplay, r)
		}
		return
	}

	labels := make(map[subjectKey]string)
	for _, r := range rules {
		k := subjectKey{r.SubjectType, r.SubjectID}
		label, seen := labels[k]
		if !seen {
			label = s.lookupDisplay(ctx, r)
			labels[k] = label
		}
		if label == "" {
			label = r.SubjectDisplay
		}
		r.SubjectDisplay = displayOrFallback(label, r)
	}
}

func (s *Service) lookupDisplay(ctx context.Context, r *rule.Rule) string {
	switch r.SubjectType {
	case rule.SubjectRole:
		role, err := s.roles.GetRole(ctx, r.SubjectID)
		if err != nil {
			if !errors.Is(err, directory.ErrNotFound) {
				s.logger.Warn("refresh role label failed", slog.Int64("role_id", r.SubjectID), slog.String("error", err.Error()))
			}
			return ""
		}
		return role.Name
	case rule.SubjectUser:
		u, err := s.users.GetUser(ctx, r.SubjectID)
		if err != nil {
			if !errors.Is(err, directory.ErrNotFound) {
				s.logger.Warn("refresh user label failed", slog.Int64("user_id", r.SubjectID), slog.String("error", err.Error()))
			}
			return ""
		}
		return u.Email
	}
	return ""
}

func displayOrFallback(label string, r *rule.Rule) string {
	if label != "" {
		return label
	}
	id := strconv.FormatInt(r.SubjectID, 10)
	if r.SubjectType == rule.SubjectRole {
		return "Role #" + id
	}
	return "User #" + id
}
