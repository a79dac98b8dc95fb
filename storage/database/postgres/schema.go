package postgres

import (
	"context"

	"github.com/pkg/errors"
)

// The table and column names below are an external contract: operational
// scripts read the store directly. They must not be renamed without a
// migration.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('teacher', 'student')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		teacher_id  BIGINT NOT NULL REFERENCES users (id),
		create_key  TEXT NOT NULL UNIQUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS enrollment (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users (id),
		course_id   BIGINT NOT NULL REFERENCES courses (id),
		enrolled_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, course_id)
	)`,

	`CREATE TABLE IF NOT EXISTS materials (
		id           BIGSERIAL PRIMARY KEY,
		course_id    BIGINT NOT NULL REFERENCES courses (id),
		title        TEXT NOT NULL,
		storage_path TEXT NOT NULL,
		uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS attendance (
		id          BIGSERIAL PRIMARY KEY,
		student_id  BIGINT NOT NULL REFERENCES users (id),
		course_id   BIGINT NOT NULL REFERENCES courses (id),
		date        DATE NOT NULL,
		status      TEXT NOT NULL CHECK (status IN ('present', 'absent')),
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (student_id, course_id, date)
	)`,

	`CREATE TABLE IF NOT EXISTS posts (
		id        BIGSERIAL PRIMARY KEY,
		course_id BIGINT NOT NULL REFERENCES courses (id),
		user_id   BIGINT NOT NULL REFERENCES users (id),
		content   TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS replies (
		id        BIGSERIAL PRIMARY KEY,
		post_id   BIGINT NOT NULL REFERENCES posts (id),
		user_id   BIGINT NOT NULL REFERENCES users (id),
		content   TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS materials_course_id_idx ON materials (course_id)`,
	`CREATE INDEX IF NOT EXISTS posts_course_id_idx ON posts (course_id)`,
	`CREATE INDEX IF NOT EXISTS replies_post_id_idx ON replies (post_id)`,
}

// EnsureSchema creates missing tables, constraints and indexes. Safe to run
// on every process start; it does not reconcile drift on populated stores.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, q := range schema {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return errors.Wrap(err, "ensuring schema")
		}
	}
	return nil
}
