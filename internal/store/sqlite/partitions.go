package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"worldsmith/internal/store"
)

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT data FROM partitions WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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
	VALUES (?, ?, datetime('now'))
	ON CONFLICT (key) DO UPDATE SET
		data = excluded.data,
		updated_at = datetime('now')
	`
	if _, err := c.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("writing partition %s: %w", key, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM partitions WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting partition %s: %w", key, err)
	}
	return nil
}

func (c *Client) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key FROM partitions WHERE substr(key, 1, ?) = ? ORDER BY key`,
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
