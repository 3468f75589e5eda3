package mongo

import (
	"strings"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/rule"
)

// ──────────────────────────────────────────────────
// Rule model
// ──────────────────────────────────────────────────

type ruleModel struct {
	grove.BaseModel `grove:"table:am_rules"`
	ID              int64     `grove:"id,pk"           bson:"_id"`
	SubjectType     string    `grove:"subject_type"    bson:"subject_type"`
	SubjectID       int64     `grove:"subject_id"      bson:"subject_id"`
	SubjectDisplay  string    `grove:"subject_display" bson:"subject_display"`
	Module          string    `grove:"module"          bson:"module"`
	Permission      string    `grove:"permission"      bson:"permission"`
	CreatedAt       time.Time `grove:"created_at"      bson:"created_at"`
}

func ruleToModel(r *rule.Rule) *ruleModel {
	return &ruleModel{
		ID:             r.ID,
		SubjectType:    string(r.SubjectType),
		SubjectID:      r.SubjectID,
		SubjectDisplay: r.SubjectDisplay,
		Module:         r.Module,
		Permission:     string(r.Permission),
		CreatedAt:      r.CreatedAt,
	}
}

func ruleFromModel(m *ruleModel) *rule.Rule {
	return &rule.Rule{
		ID:             m.ID,
		SubjectType:    rule.SubjectType(m.SubjectType),
		SubjectID:      m.SubjectID,
		SubjectDisplay: m.SubjectDisplay,
		Module:         m.Module,
		Permission:     rule.Permission(m.Permission),
		CreatedAt:      m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Directory models
// ──────────────────────────────────────────────────

// Lower-cased copies of name and email back the case-insensitive lookups.

type roleModel struct {
	grove.BaseModel `grove:"table:am_roles"`
	ID              int64     `grove:"id,pk"       bson:"_id"`
	Name            string    `grove:"name"        bson:"name"`
	NameLower       string    `grove:"name_lower"  bson:"name_lower"`
	Description     string    `grove:"description" bson:"description"`
	CreatedAt       time.Time `grove:"created_at"  bson:"created_at"`
}

func roleToModel(r *directory.Role) *roleModel {
	return &roleModel{
		ID:          r.ID,
		Name:        r.Name,
		NameLower:   strings.ToLower(r.Name),
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

func roleFromModel(m *roleModel) *directory.Role {
	return &directory.Role{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

type userModel struct {
	grove.BaseModel `grove:"table:am_users"`
	ID              int64     `grove:"id,pk"       bson:"_id"`
	Email           string    `grove:"email"       bson:"email"`
	EmailLower      string    `grove:"email_lower" bson:"email_lower"`
	Username        string    `grove:"username"    bson:"username"`
	RoleID          int64     `grove:"role_id"     bson:"role_id"`
	CreatedAt       time.Time `grove:"created_at"  bson:"created_at"`
}

func userToModel(u *directory.User) *userModel {
	return &userModel{
		ID:         u.ID,
		Email:      u.Email,
		EmailLower: strings.ToLower(u.Email),
		Username:   u.Username,
		RoleID:     u.RoleID,
		CreatedAt:  u.CreatedAt,
	}
}

func userFromModel(m *userModel) *directory.User {
	return &directory.User{
		ID:        m.ID,
		Email:     m.Email,
		Username:  m.Username,
		RoleID:    m.RoleID,
		CreatedAt: m.CreatedAt,
	}
}

// counterModel is a named monotonic sequence.
type counterModel struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}
