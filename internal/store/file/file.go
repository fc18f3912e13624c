package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"worldsmith/internal/store"
)

var _ store.Store = (*Client)(nil)

const extension = ".json"

// Client stores each partition as <key>.json inside a single directory.
type Client struct {
	dir string

	mu sync.RWMutex
}

func New(dir string) (*Client, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("file store directory is required")
	}
	return &Client{dir: filepath.Clean(dir)}, nil
}

func (c *Client) Close(ctx context.Context) error { return nil }

func (c *Client) EnsureSchema(ctx context.Context) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.filePath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading partition %s: %w", key, err)
	}
	return data, nil
}

func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return atomicWrite(c.filePath(key), data, 0o644)
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.filePath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing partition %s: %w", key, err)
	}
	return nil
}

func (c *Client) Keys(ctx context.Context, prefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != extension {
			continue
		}
		key := strings.TrimSuffix(name, extension)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *Client) filePath(key string) string {
	return filepath.Join(c.dir, key+extension)
}

// atomicWrite writes data to a temp file then renames it over the target so a
// partition is never left half written.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
