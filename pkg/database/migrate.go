package database

import (
	"context"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           UUID PRIMARY KEY,
		username     VARCHAR(150) UNIQUE NOT NULL,
		email        VARCHAR(254) UNIQUE NOT NULL,
		role         VARCHAR(16)  NOT NULL DEFAULT 'user'
		             CHECK (role IN ('user', 'moderator', 'admin')),
		bio          TEXT         NOT NULL DEFAULT '',
		first_name   VARCHAR(150) NOT NULL DEFAULT '',
		last_name    VARCHAR(150) NOT NULL DEFAULT '',
		is_staff     BOOLEAN      NOT NULL DEFAULT FALSE,
		is_superuser BOOLEAN      NOT NULL DEFAULT FALSE,
		is_confirmed BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS confirmation_codes (
		id         UUID PRIMARY KEY,
		user_id    UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		code_hash  TEXT        NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		used_at    TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS confirmation_codes_user_idx
		ON confirmation_codes (user_id) WHERE used_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         UUID PRIMARY KEY,
		name       VARCHAR(256) UNIQUE NOT NULL,
		slug       VARCHAR(50)  UNIQUE NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id         UUID PRIMARY KEY,
		name       VARCHAR(256) UNIQUE NOT NULL,
		slug       VARCHAR(50)  UNIQUE NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS titles (
		id          UUID PRIMARY KEY,
		name        VARCHAR(256) NOT NULL,
		year        INTEGER      NOT NULL CHECK (year > 0),
		description TEXT,
		category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS title_genres (
		title_id UUID NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
		genre_id UUID NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
		PRIMARY KEY (title_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id        UUID PRIMARY KEY,
		author_id UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title_id  UUID        NOT NULL REFERENCES titles(id) ON DELETE CASCADE,
		text      TEXT        NOT NULL,
		score     SMALLINT    NOT NULL CHECK (score BETWEEN 1 AND 10),
		pub_date  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT reviews_author_title_key UNIQUE (author_id, title_id)
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_title_idx ON reviews (title_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id        UUID PRIMARY KEY,
		author_id UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		review_id UUID        NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
		text      TEXT        NOT NULL,
		pub_date  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_review_idx ON comments (review_id)`,
}

// Migrate creates the tables if they don't exist.
func Migrate(ctx context.Context, db PgxIface) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
