// Package mcp exposes worlds to agents over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldsmith/internal/config"
	"worldsmith/internal/store"
	"worldsmith/internal/world"
)

type Server struct {
	st        store.Store
	templates *config.TemplateSet
	opts      []world.Option
	mcp       *sdk.Server
}

func NewServer(st store.Store, templates *config.TemplateSet, version string, opts ...world.Option) *Server {
	if templates == nil {
		templates = config.DefaultTemplates()
	}
	s := &Server{
		st:        st,
		templates: templates,
		opts:      opts,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "worldsmith",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

// workspace loads the named world, or the selected one when worldID is
// empty. Partitions are re-read on every call so edits made elsewhere show up.
func (s *Server) workspace(ctx context.Context, worldID string) (*world.Workspace, error) {
	reg := world.OpenRegistry(ctx, s.st, s.opts...)
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		selected, err := reg.Selected(ctx)
		if err != nil {
			return nil, err
		}
		if selected == "" {
			return nil, fmt.Errorf("world_id is required when no world is selected")
		}
		worldID = selected
	}
	if _, ok := reg.Get(worldID); !ok {
		return nil, fmt.Errorf("%w: %s", world.ErrWorldNotFound, worldID)
	}
	return world.OpenWorkspace(ctx, s.st, worldID, s.opts...)
}
