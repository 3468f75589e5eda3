package postgres

import (
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
	ID              int64     `grove:"id,pk,autoincrement"`
	SubjectType     string    `grove:"subject_type,notnull"`
	SubjectID       int64     `grove:"subject_id,notnull"`
	SubjectDisplay  string    `grove:"subject_display"`
	Module          string    `grove:"module,notnull"`
	Permission      string    `grove:"permission,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
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

type roleModel struct {
	grove.BaseModel `grove:"table:am_roles"`
	ID              int64     `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
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
	ID              int64     `grove:"id,pk"`
	Email           string    `grove:"email,notnull"`
	Username        string    `grove:"username"`
	RoleID          int64     `grove:"role_id,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
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
