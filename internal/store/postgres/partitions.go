package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"worldsmith/internal/store"
)

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := c.pool.QueryRow(ctx, "SELECT data FROM partitions WHERE key = $1", key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting partition %s: %w", key, err)
	}
	return data, nil
}

func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	query := `
INSERT INTO partitions (key, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET
    data = EXCLUDED.data,
    updated_at = now()
`
	if _, err := c.pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("writing partition %s: %w", key, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if _, err := c.pool.Exec(ctx, "DELETE FROM partitions WHERE key = $1", key); err != nil {
		return fmt.Errorf("deleting partition %s: %w", key, err)
	}
	return nil
}

func (c *Client) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := c.pool.Query(ctx,
		"SELECT key FROM partitions WHERE left(key, $1) = $2 ORDER BY key",
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning partition key: %w", err)
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating partition keys: %w", err)
	}

	return keys, nil
}
