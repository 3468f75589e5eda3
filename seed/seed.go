// Package seed loads role, user, and grant fixtures from YAML and applies
// them to an access matrix.
//
//	roles:
//	  - {id: 1, name: manager}
//	users:
//	  - {id: 10, email: alice@example.com, role_id: 1}
//	grants:
//	  - {subject_type: role, subject: manager, module: invites, permission: manage}
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xraph/accessmatrix"
	"github.com/xraph/accessmatrix/directory"
)

// File is a seed document.
type File struct {
	Roles  []Role  `yaml:"roles"`
	Users  []User  `yaml:"users"`
	Grants []Grant `yaml:"grants"`
}

// Role is a directory role fixture.
type Role struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// User is a directory user fixture.
type User struct {
	ID       int64  `yaml:"id"`
	Email    string `yaml:"email"`
	Username string `yaml:"username,omitempty"`
	RoleID   int64  `yaml:"role_id,omitempty"`
}

// Grant is an access rule fixture. Subject is a role name or user email.
type Grant struct {
	SubjectType string `yaml:"subject_type"`
	Subject     string `yaml:"subject"`
	Module      string `yaml:"module"`
	Permission  string `yaml:"permission"`
}

// Result counts what Apply changed.
type Result struct {
	RolesCreated  int
	UsersCreated  int
	RulesCreated  int
	RulesExisting int
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) validate() error {
	roles := make(map[int64]bool, len(f.Roles))
	for i, r := range f.Roles {
		if r.ID <= 0 {
			return fmt.Errorf("roles[%d]: id must be positive", i)
		}
		if r.Name == "" {
			return fmt.Errorf("roles[%d]: name is required", i)
		}
		if roles[r.ID] {
			return fmt.Errorf("roles[%d]: duplicate id %d", i, r.ID)
		}
		roles[r.ID] = true
	}
	users := make(map[int64]bool, len(f.Users))
	for i, u := range f.Users {
		if u.ID <= 0 {
			return fmt.Errorf("users[%d]: id must be positive", i)
		}
		if u.Email == "" {
			return fmt.Errorf("users[%d]: email is required", i)
		}
		if users[u.ID] {
			return fmt.Errorf("users[%d]: duplicate id %d", i, u.ID)
		}
		users[u.ID] = true
	}
	return nil
}

// Apply creates missing roles and users, then issues every grant through
// svc. Existing directory entries are left untouched and grants are
// idempotent, so applying the same file twice is safe.
func Apply(ctx context.Context, svc *accessmatrix.Service, f *File, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := svc.Store()
	res := &Result{}

	for _, r := range f.Roles {
		created, err := ensure(func() error {
			_, err := dir.GetRole(ctx, r.ID)
			return err
		}, func() error {
			return dir.CreateRole(ctx, &directory.Role{ID: r.ID, Name: r.Name, Description: r.Description})
		})
		if err != nil {
			return res, fmt.Errorf("seed: role %d: %w", r.ID, err)
		}
		if created {
			res.RolesCreated++
		}
	}

	for _, u := range f.Users {
		created, err := ensure(func() error {
			_, err := dir.GetUser(ctx, u.ID)
			return err
		}, func() error {
			return dir.CreateUser(ctx, &directory.User{ID: u.ID, Email: u.Email, Username: u.Username, RoleID: u.RoleID})
		})
		if err != nil {
			return res, fmt.Errorf("seed: user %d: %w", u.ID, err)
		}
		if created {
			res.UsersCreated++
		}
	}

	for i, g := range f.Grants {
		_, created, err := svc.Grant(ctx, accessmatrix.GrantRequest{
			SubjectType: g.SubjectType,
			Subject:     g.Subject,
			Module:      g.Module,
			Permission:  g.Permission,
		})
		if err != nil {
			return res, fmt.Errorf("seed: grants[%d]: %w", i, err)
		}
		if created {
			res.RulesCreated++
		} else {
			res.RulesExisting++
		}
	}

	logger.Info("seed applied",
		slog.Int("roles_created", res.RolesCreated),
		slog.Int("users_created", res.UsersCreated),
		slog.Int("rules_created", res.RulesCreated),
		slog.Int("rules_existing", res.RulesExisting),
	)
	return res, nil
}

// ensure runs create when get reports directory.ErrNotFound.
func ensure(get, create func() error) (bool, error) {
	err := get()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, directory.ErrNotFound) {
		return false, err
	}
	if err := create(); err != nil {
		return false, err
	}
	return true, nil
}
