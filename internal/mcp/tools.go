package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldsmith/internal/search"
	"worldsmith/internal/validate"
	"worldsmith/internal/world"
)

type ListWorldsInput struct{}

type WorldScopedInput struct {
	WorldID string `json:"world_id,omitempty" jsonschema:"world id, defaults to the selected world"`
}

type GetCharacterInput struct {
	WorldID string `json:"world_id,omitempty" jsonschema:"world id, defaults to the selected world"`
	ID      string `json:"id,omitempty" jsonschema:"character id"`
	Name    string `json:"name,omitempty" jsonschema:"character name, matched case-insensitively"`
}

type ListNotesInput struct {
	WorldID  string `json:"world_id,omitempty" jsonschema:"world id, defaults to the selected world"`
	Category string `json:"category,omitempty" jsonschema:"category filter"`
}

type ListRelationshipsInput struct {
	WorldID     string `json:"world_id,omitempty" jsonschema:"world id, defaults to the selected world"`
	CharacterID string `json:"character_id,omitempty" jsonschema:"only relationships touching this character"`
}

type SearchWorldInput struct {
	WorldID string `json:"world_id,omitempty" jsonschema:"world id, defaults to the selected world"`
	Query   string `json:"query" jsonschema:"search terms"`
}

type GetTemplatesInput struct{}

type WorldOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Template    string `json:"template,omitempty"`
	Selected    bool   `json:"selected"`
}

type ListWorldsOutput struct {
	Worlds []WorldOutput `json:"worlds"`
}

type CharacterSummaryOutput struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Race string   `json:"race,omitempty"`
	Role string   `json:"role,omitempty"`
	Tags []string `json:"tags"`
}

type ListCharactersOutput struct {
	Characters []CharacterSummaryOutput `json:"characters"`
}

type CharacterOutput struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Race          string               `json:"race,omitempty"`
	Age           int                  `json:"age,omitempty"`
	Role          string               `json:"role,omitempty"`
	Description   string               `json:"description,omitempty"`
	Biography     string               `json:"biography,omitempty"`
	HasPortrait   bool                 `json:"has_portrait"`
	Tags          []string             `json:"tags"`
	Relationships []RelationshipOutput `json:"relationships"`
}

type NoteOutput struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Text     string   `json:"text,omitempty"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Pinned   bool     `json:"pinned"`
}

type ListNotesOutput struct {
	Notes []NoteOutput `json:"notes"`
}

type RelationshipOutput struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Summary     string `json:"summary"`
}

type ListRelationshipsOutput struct {
	Relationships []RelationshipOutput `json:"relationships"`
}

type SearchWorldOutput struct {
	Results []search.Result `json:"results"`
}

type CheckWorldOutput struct {
	Errors   int              `json:"errors"`
	Warnings int              `json:"warnings"`
	Issues   []validate.Issue `json:"issues"`
}

type TemplateOutput struct {
	Name      string `json:"name"`
	Geography string `json:"geography,omitempty"`
	Races     string `json:"races,omitempty"`
	Magic     string `json:"magic,omitempty"`
}

type GetTemplatesOutput struct {
	Templates []TemplateOutput `json:"templates"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_worlds",
		Description: "List every world and which one is selected",
	}, s.handleListWorlds)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_characters",
		Description: "List the characters of a world",
	}, s.handleListCharacters)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_character",
		Description: "Retrieve a character by id or name, with its relationships",
	}, s.handleGetCharacter)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_notes",
		Description: "List notes, pinned first, optionally filtered by category",
	}, s.handleListNotes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_relationships",
		Description: "List relationships between characters",
	}, s.handleListRelationships)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_world",
		Description: "Search characters, notes, relationships, lore, maps and events",
	}, s.handleSearchWorld)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "check_world",
		Description: "Run integrity checks over a world",
	}, s.handleCheckWorld)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_templates",
		Description: "Return the world templates available for new worlds",
	}, s.handleGetTemplates)
}

func (s *Server) handleListWorlds(ctx context.Context, req *sdk.CallToolRequest, input ListWorldsInput) (*sdk.CallToolResult, ListWorldsOutput, error) {
	reg := world.OpenRegistry(ctx, s.st, s.opts...)
	selected, err := reg.Selected(ctx)
	if err != nil {
		return nil, ListWorldsOutput{}, err
	}

	worlds := reg.Worlds()
	output := make([]WorldOutput, 0, len(worlds))
	for _, w := range worlds {
		output = append(output, WorldOutput{
			ID:          w.ID,
			Name:        w.Name,
			Description: w.Description,
			Template:    w.Template,
			Selected:    w.ID == selected,
		})
	}
	return nil, ListWorldsOutput{Worlds: output}, nil
}

func (s *Server) handleListCharacters(ctx context.Context, req *sdk.CallToolRequest, input WorldScopedInput) (*sdk.CallToolResult, ListCharactersOutput, error) {
	ws, err := s.workspace(ctx, input.WorldID)
	if err != nil {
		return nil, ListCharactersOutput{}, err
	}

	chars := ws.Characters.All()
	output := make([]CharacterSummaryOutput, 0, len(chars))
	for _, c := range chars {
		output = append(output, CharacterSummaryOutput{
			ID:   c.ID,
			Name: c.Name,
			Race: c.Race,
			Role: c.Role,
			Tags: append([]string{}, c.Tags...),
		})
	}
	return nil, ListCharactersOutput{Characters: output}, nil
}

func (s *Server) handleGetCharacter(ctx context.Context, req *sdk.CallToolRequest, input GetCharacterInput) (*sdk.CallToolResult, CharacterOutput, error) {
	if input.ID == "" && input.Name == "" {
		return nil, CharacterOutput{}, fmt.Errorf("id or name is required")
	}
	ws, err := s.workspace(ctx, input.WorldID)
	if err != nil {
		return nil, CharacterOutput{}, err
	}

	chars := ws.Characters.All()
	var found *world.Character
	for _, c := range chars {
		if (input.ID != "" && c.ID == input.ID) || (input.ID == "" && strings.EqualFold(c.Name, strings.TrimSpace(input.Name))) {
			found = c
			break
		}
	}
	if found == nil {
		return nil, CharacterOutput{}, fmt.Errorf("character not found")
	}

	rels := world.RelationshipsOf(ws.Relationships.All(), found.ID)
	out := CharacterOutput{
		ID:            found.ID,
		Name:          found.Name,
		Race:          found.Race,
		Age:           found.Age,
		Role:          found.Role,
		Description:   found.Description,
		Biography:     found.Biography,
		HasPortrait:   found.Portrait != "",
		Tags:          append([]string{}, found.Tags...),
		Relationships: relationshipOutputs(chars, rels),
	}
	return nil, out, nil
}

func (s *Server) handleListNotes(ctx context.Context, req *sdk.CallToolRequest, input ListNotesInput) (*sdk.CallToolResult, ListNotesOutput, error) {
	ws, err := s.workspace(ctx, input.WorldID)
	if err != nil {
		return nil, ListNotesOutput{}, err
	}

	notes := ws.Notes.All()
	if input.Category != "" {
		notes = world.NotesByCategory(notes, input.Category)
	}
	notes = world.SortNotes(notes)

	output := make([]NoteOutput, 0, len(notes))
	for _, n := range notes {
		output = append(output, NoteOutput{
			ID:       n.ID,
			Title:    n.Title,
			Text:     n.Text,
			Category: n.Category,
			Tags:     append([]string{}, n.Tags...),
			Pinned:   n.IsPinned,
		})
	}
	return nil, ListNotesOutput{Notes: output}, nil
}

func (s *Server) handleListRelationships(ctx context.Context, req *sdk.CallToolRequest, input ListRelationshipsInput) (*sdk.CallToolResult, ListRelationshipsOutput, error) {
	ws, err := s.workspace(ctx, input.WorldID)
	if err != nil {
		return nil, ListRelationshipsOutput{}, err
	}

	rels := ws.Relationships.All()
	if input.CharacterID != "" {
		rels = world.RelationshipsOf(rels, input.CharacterID)
	}
	return nil, ListRelationshipsOutput{Relationships: relationshipOutputs(ws.Characters.All(), rels)}, nil
}

func (s *Server) handleSearchWorld(ctx context.Context, req *sdk.CallToolRequest, input SearchWorldInput) (*sdk.CallToolResult, SearchWorldOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchWorldOutput{}, fmt.Errorf("query is required")
	}
	ws, err := s.workspace(ctx, input.WorldID)
	if err != nil {
		return nil, SearchWorldOutput{}, err
	}

	results := search.Search(ws, input.Query)
	if results == nil {
		results = []search.Result{}
	}
	return nil, SearchWorldOutput{Results: results}, nil
}

func (s *Server) handleCheckWorld(ctx context.Context, req *sdk.CallToolRequest, input WorldScopedInput) (*sdk.CallToolResult, CheckWorldOutput, error) {
	ws, err := s.workspace(ctx, input.WorldID)
	if err != nil {
		return nil, CheckWorldOutput{}, err
	}

	report := validate.Run(ws)
	issues := report.Issues
	if issues == nil {
		issues = []validate.Issue{}
	}
	return nil, CheckWorldOutput{
		Errors:   report.Count(validate.SeverityError),
		Warnings: report.Count(validate.SeverityWarn),
		Issues:   issues,
	}, nil
}

func (s *Server) handleGetTemplates(ctx context.Context, req *sdk.CallToolRequest, input GetTemplatesInput) (*sdk.CallToolResult, GetTemplatesOutput, error) {
	output := make([]TemplateOutput, 0, len(s.templates.Templates))
	for _, tmpl := range s.templates.Templates {
		output = append(output, TemplateOutput{
			Name:      tmpl.Name,
			Geography: tmpl.Geography,
			Races:     tmpl.Races,
			Magic:     tmpl.Magic,
		})
	}
	return nil, GetTemplatesOutput{Templates: output}, nil
}

func relationshipOutputs(chars []*world.Character, rels []*world.Relationship) []RelationshipOutput {
	output := make([]RelationshipOutput, 0, len(rels))
	for _, r := range rels {
		kind, _ := r.Type.Normalize()
		output = append(output, RelationshipOutput{
			ID:          r.ID,
			From:        world.CharacterName(chars, r.Character1ID),
			To:          world.CharacterName(chars, r.Character2ID),
			Type:        string(kind),
			Description: r.Description,
			Summary:     world.DescribeRelationship(chars, r),
		})
	}
	return output
}
