package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS sites (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	domain TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reports (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	site_id BIGINT NOT NULL REFERENCES sites(id),
	format TEXT NOT NULL DEFAULT 'xlsx',
	filters JSONB NOT NULL DEFAULT '{}',
	status TEXT NOT NULL DEFAULT 'pending',
	file_path TEXT NOT NULL DEFAULT '',
	public_url TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	attempts INT NOT NULL DEFAULT 0,
	next_attempt_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reports_user ON reports (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_retry ON reports (next_attempt_at) WHERE next_attempt_at IS NOT NULL;
`

// EnsureSchema creates the tables this service owns if they do not exist
// yet. Applied once at startup.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
