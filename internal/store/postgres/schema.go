package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction; IF NOT EXISTS keeps it idempotent.
	ddl := `
CREATE TABLE IF NOT EXISTS partitions (
    key        TEXT PRIMARY KEY,
    data       BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_partitions_key_pattern ON partitions (key text_pattern_ops);
`

	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
