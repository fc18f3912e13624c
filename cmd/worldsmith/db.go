package main

import (
	"context"
	"fmt"
	"strings"

	"worldsmith/internal/config"
	"worldsmith/internal/store"
	"worldsmith/internal/store/file"
	"worldsmith/internal/store/memory"
	"worldsmith/internal/store/postgres"
	"worldsmith/internal/store/sqlite"
)

// openStore connects the backend named by the DSN scheme and ensures its
// schema exists.
func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	scheme, err := cfg.Storage.Scheme()
	if err != nil {
		return nil, err
	}

	var st store.Store
	switch scheme {
	case "sqlite":
		st, err = sqlite.New(ctx, cfg.Storage.DSN)
	case "postgres", "postgresql":
		st, err = postgres.New(ctx, cfg.Storage.DSN)
	case "file":
		dir := strings.TrimPrefix(cfg.Storage.DSN[len(scheme):], "://")
		st, err = file.New(cfg.Resolve(dir))
	case "memory":
		st = memory.New()
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", scheme)
	}
	if err != nil {
		return nil, err
	}

	if err := st.EnsureSchema(ctx); err != nil {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("preparing storage: %w", err)
	}
	return st, nil
}
