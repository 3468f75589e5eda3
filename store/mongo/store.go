// Package mongo provides a MongoDB implementation of the accessmatrix
// composite store using grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/rule"
	"github.com/xraph/accessmatrix/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Collection name constants.
const (
	colRules    = "am_rules"
	colRoles    = "am_roles"
	colUsers    = "am_users"
	colCounters = "am_counters"
)

// ruleSequence is the counter document rule IDs are drawn from. Deleted IDs
// are never handed out again.
const ruleSequence = "am_rules"

// Store is a MongoDB implementation of the composite accessmatrix store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all accessmatrix collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if _, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("accessmatrix/mongo: migrate %s indexes: %w", col, err)
		}
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colRules: {
			{
				Keys: bson.D{
					{Key: "subject_type", Value: 1},
					{Key: "subject_id", Value: 1},
					{Key: "module", Value: 1},
					{Key: "permission", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "module", Value: 1}}},
		},
		colRoles: {
			{Keys: bson.D{{Key: "name_lower", Value: 1}}},
		},
		colUsers: {
			{Keys: bson.D{{Key: "email_lower", Value: 1}}},
		},
	}
}

// nextID atomically increments and returns the named sequence.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var c counterModel
	err := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}

// ──────────────────────────────────────────────────
// Rule operations
// ──────────────────────────────────────────────────

func (s *Store) InsertRule(ctx context.Context, r *rule.Rule) error {
	ruleID, err := s.nextID(ctx, ruleSequence)
	if err != nil {
		return fmt.Errorf("accessmatrix: insert rule: allocate id: %w", err)
	}
	r.ID = ruleID
	r.CreatedAt = time.Now().UTC()
	if _, err := s.mdb.NewInsert(ruleToModel(r)).Exec(ctx); err != nil {
		r.ID = 0
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("accessmatrix: insert rule: %w", rule.ErrDuplicate)
		}
		return fmt.Errorf("accessmatrix: insert rule: %w", err)
	}
	return nil
}

func (s *Store) GetRule(ctx context.Context, ruleID int64) (*rule.Rule, error) {
	var m ruleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": ruleID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("rule %d: %w", ruleID, rule.ErrNotFound)
		}
		return nil, fmt.Errorf("accessmatrix: get rule: %w", err)
	}
	return ruleFromModel(&m), nil
}

func (s *Store) FindRuleByTuple(ctx context.Context, t rule.Tuple) (*rule.Rule, error) {
	var m ruleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"subject_type": string(t.SubjectType),
			"subject_id":   t.SubjectID,
			"module":       t.Module,
			"permission":   string(t.Permission),
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("rule %s/%d %s:%s: %w", t.SubjectType, t.SubjectID, t.Module, t.Permission, rule.ErrNotFound)
		}
		return nil, fmt.Errorf("accessmatrix: find rule: %w", err)
	}
	return ruleFromModel(&m), nil
}

func (s *Store) DeleteRule(ctx context.Context, ruleID int64) (bool, error) {
	res, err := s.mdb.NewDelete((*ruleModel)(nil)).
		Filter(bson.M{"_id": ruleID}).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("accessmatrix: delete rule: %w", err)
	}
	return res.DeletedCount() > 0, nil
}

func (s *Store) ListRules(ctx context.Context) ([]*rule.Rule, error) {
	var models []ruleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
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
	if _, err := s.mdb.NewInsert(roleToModel(r)).Exec(ctx); err != nil {
		return fmt.Errorf("accessmatrix: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID int64) (*directory.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": roleID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %d: %w", roleID, directory.ErrNotFound)
		}
		return nil, fmt.Errorf("accessmatrix: get role: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) FindRolesByName(ctx context.Context, name string) ([]*directory.Role, error) {
	var models []roleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"name_lower": strings.ToLower(name)}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
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
	if _, err := s.mdb.NewInsert(userToModel(u)).Exec(ctx); err != nil {
		return fmt.Errorf("accessmatrix: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*directory.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %d: %w", userID, directory.ErrNotFound)
		}
		return nil, fmt.Errorf("accessmatrix: get user: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) FindUsersByEmail(ctx context.Context, email string) ([]*directory.User, error) {
	var models []userModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"email_lower": strings.ToLower(email)}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
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
