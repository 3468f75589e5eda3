package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the accessmatrix store (SQLite).
var Migrations = migrate.NewGroup("accessmatrix")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_directory",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS am_roles (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_am_roles_name ON am_roles (LOWER(name));

CREATE TABLE IF NOT EXISTS am_users (
    id              INTEGER PRIMARY KEY,
    email           TEXT NOT NULL,
    username        TEXT NOT NULL DEFAULT '',
    role_id         INTEGER NOT NULL DEFAULT 0,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_am_users_email ON am_users (LOWER(email));
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS am_users;
DROP TABLE IF EXISTS am_roles;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rules",
			Version: "20260101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS am_rules (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    subject_type    TEXT NOT NULL CHECK (subject_type IN ('role', 'user')),
    subject_id      INTEGER NOT NULL,
    subject_display TEXT NOT NULL DEFAULT '',
    module          TEXT NOT NULL CHECK (module <> ''),
    permission      TEXT NOT NULL CHECK (permission IN ('view', 'create', 'edit', 'delete', 'manage')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

    UNIQUE(subject_type, subject_id, module, permission)
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
