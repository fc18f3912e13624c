package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"worldsmith/internal/config"
	"worldsmith/internal/logging"
	"worldsmith/internal/store"
	"worldsmith/internal/world"
)

const defaultConfigName = config.DefaultPath

var (
	configPath string
	worldFlag  string
)

var errNoWorld = errors.New("no world selected; pass --world or run 'worldsmith world select'")

// env is the state every command works from: config, logger, storage and
// the world registry.
type env struct {
	cfg    *config.ProjectConfig
	logger *slog.Logger
	st     store.Store
	reg    *world.Registry
	opts   []world.Option
}

func loadEnv(ctx context.Context, cmd *cobra.Command) (*env, error) {
	path := configPath
	if path == "" {
		path = defaultConfigName
	}
	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		return nil, err
	}

	logger := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []world.Option{world.WithLogger(logger)}
	return &env{
		cfg:    cfg,
		logger: logger,
		st:     st,
		reg:    world.OpenRegistry(ctx, st, opts...),
		opts:   opts,
	}, nil
}

func (e *env) Close(ctx context.Context) {
	if err := e.st.Close(ctx); err != nil {
		e.logger.Warn("closing storage", "error", err)
	}
}

// resolveWorld finds a world by id, then by case-insensitive name.
func (e *env) resolveWorld(ref string) (*world.World, error) {
	ref = strings.TrimSpace(ref)
	if w, ok := e.reg.Get(ref); ok {
		return w, nil
	}
	var matches []*world.World
	for _, w := range e.reg.Worlds() {
		if strings.EqualFold(w.Name, ref) {
			matches = append(matches, w)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", world.ErrWorldNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("world name %q is ambiguous, use its id", ref)
	}
}

// currentWorld resolves --world, falling back to the selected world.
func (e *env) currentWorld(ctx context.Context) (*world.World, error) {
	if worldFlag != "" {
		return e.resolveWorld(worldFlag)
	}
	selected, err := e.reg.Selected(ctx)
	if err != nil {
		return nil, err
	}
	if selected == "" {
		return nil, errNoWorld
	}
	w, ok := e.reg.Get(selected)
	if !ok {
		return nil, errNoWorld
	}
	return w, nil
}

// workspace opens the current world and tags ctx with its id for logging.
func (e *env) workspace(ctx context.Context) (context.Context, *world.Workspace, error) {
	w, err := e.currentWorld(ctx)
	if err != nil {
		return ctx, nil, err
	}
	ctx = logging.WithWorld(ctx, w.ID)
	opts := append([]world.Option{}, e.opts...)
	opts = append(opts, world.WithLogger(logging.FromContext(ctx)))
	ws, err := world.OpenWorkspace(ctx, e.st, w.ID, opts...)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, ws, nil
}

// withWorkspace runs fn against the current world and closes storage after.
func withWorkspace(cmd *cobra.Command, fn func(ctx context.Context, e *env, ws *world.Workspace) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := loadEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	ctx, ws, err := e.workspace(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, e, ws)
}

// withEnv runs fn with config and storage but no world.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := loadEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close(ctx)
	return fn(ctx, e)
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
