package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the accessmatrix store (PostgreSQL).
var Migrations = migrate.NewGroup("accessmatrix")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_directory",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS am_roles (
    id              BIGINT PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_am_roles_name ON am_roles (LOWER(name));

CREATE TABLE IF NOT EXISTS am_users (
    id              BIGINT PRIMARY KEY,
    email           TEXT NOT NULL,
    username        TEXT NOT NULL DEFAULT '',
    role_id         BIGINT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_am_users_email ON am_users (LOWER(email));
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS am_users, am_roles`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rules",
			Version: "20260101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS am_rules (
    id              BIGSERIAL PRIMARY KEY,
    subject_type    TEXT NOT NULL CHECK (subject_type IN ('role', 'user')),
    subject_id      BIGINT NOT NULL,
    subject_display TEXT NOT NULL DEFAULT '',
    module          TEXT NOT NULL CHECK (module <> ''),
    permission      TEXT NOT NULL CHECK (permission IN ('view', 'create', 'edit', 'delete', 'manage')),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT am_rules_tuple_key UNIQUE (subject_type, subject_id, module, permission)
);

CREATE INDEX IF NOT EXISTS idx_am_rules_subject ON am_rules (subject_type, subject_id);
CREATE INDEX IF NOT EXISTS idx_am_rules_module ON am_rules (module);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS am_rules`)
				return err
			},
		},
	)
}
