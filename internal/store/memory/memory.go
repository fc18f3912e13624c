package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"worldsmith/internal/store"
)

var _ store.Store = (*Client)(nil)

// Client keeps partitions in process memory. It backs memory:// DSNs and tests.
type Client struct {
	mu         sync.RWMutex
	partitions map[string][]byte
}

func New() *Client {
	return &Client{partitions: map[string][]byte{}}
}

func (c *Client) Close(ctx context.Context) error { return nil }

func (c *Client) EnsureSchema(ctx context.Context) error { return nil }

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.partitions[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.partitions[key] = append([]byte(nil), data...)
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.partitions, key)
	return nil
}

func (c *Client) Keys(ctx context.Context, prefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.partitions))
	for key := range c.partitions {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
