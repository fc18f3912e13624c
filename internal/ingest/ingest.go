// Package ingest imports markdown notes into a world.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"worldsmith/internal/parser"
	"worldsmith/internal/world"
)

const (
	defaultNoteCategory = "general"
	defaultLoreSection  = "worldDescription"
)

type Result struct {
	Created      int
	Updated      int
	Unchanged    int
	FilesSkipped int
	Errors       []error
}

var errUnchanged = errors.New("unchanged")

// Run walks paths for markdown files and upserts each into ws, matching
// existing records by title case-insensitively. Files without frontmatter or
// with an unknown type are skipped; other per-file failures are collected in
// the result and do not stop the run.
func Run(ctx context.Context, ws *world.Workspace, paths, exclude []string) (*Result, error) {
	files, err := walkMarkdownFiles(paths, exclude)
	if err != nil {
		return nil, fmt.Errorf("walking files: %w", err)
	}

	result := &Result{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		doc, err := parser.ParseFile(path)
		if err != nil {
			if errors.Is(err, parser.ErrNoFrontmatter) || errors.Is(err, parser.ErrMissingType) || errors.Is(err, parser.ErrUnknownType) {
				slog.Debug("skipping file", "path", path, "reason", err)
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		created, err := upsert(ctx, ws, doc)
		switch {
		case errors.Is(err, errUnchanged):
			result.Unchanged++
		case errors.Is(err, world.ErrPersist):
			// The record is kept in memory; report the failed write.
			result.Errors = append(result.Errors, fmt.Errorf("saving %s: %w", path, err))
		case err != nil:
			result.Errors = append(result.Errors, fmt.Errorf("importing %s: %w", path, err))
		case created:
			result.Created++
		default:
			result.Updated++
		}
	}
	return result, nil
}

func upsert(ctx context.Context, ws *world.Workspace, doc *parser.Document) (bool, error) {
	switch doc.Type {
	case parser.TypeCharacter:
		return upsertCharacter(ctx, ws, doc)
	case parser.TypeNote:
		return upsertNote(ctx, ws, doc)
	case parser.TypeLore:
		return upsertLore(ctx, ws, doc)
	default:
		return false, fmt.Errorf("%w: %s", parser.ErrUnknownType, doc.Type)
	}
}

func upsertCharacter(ctx context.Context, ws *world.Workspace, doc *parser.Document) (bool, error) {
	age, hasAge, err := doc.Int("age")
	if err != nil {
		return false, err
	}
	apply := func(c *world.Character) {
		c.Name = doc.Title
		if race := doc.String("race"); race != "" {
			c.Race = race
		}
		if role := doc.String("role"); role != "" {
			c.Role = role
		}
		if description := doc.String("description"); description != "" {
			c.Description = description
		}
		if hasAge {
			c.Age = age
		}
		if doc.Body != "" {
			c.Biography = doc.Body
		}
		if doc.Tags != nil {
			c.Tags = doc.Tags
		}
	}

	for _, c := range ws.Characters.All() {
		if strings.EqualFold(c.Name, doc.Title) {
			return false, modify(ctx, ws.Characters, c.ID, apply)
		}
	}
	c := &world.Character{}
	apply(c)
	return true, ws.Characters.Add(ctx, c)
}

func upsertNote(ctx context.Context, ws *world.Workspace, doc *parser.Document) (bool, error) {
	apply := func(n *world.Note) {
		n.Title = doc.Title
		n.Text = doc.Body
		if category := doc.String("category"); category != "" {
			n.Category = category
		} else if n.Category == "" {
			n.Category = defaultNoteCategory
		}
		if doc.Tags != nil {
			n.Tags = doc.Tags
		}
		n.IsPinned = doc.Bool("pinned")
	}

	for _, n := range ws.Notes.All() {
		if strings.EqualFold(n.Title, doc.Title) {
			return false, modify(ctx, ws.Notes, n.ID, apply)
		}
	}
	n := &world.Note{}
	apply(n)
	return true, ws.Notes.Add(ctx, n)
}

// upsertLore stores the title as the first line of the entry text, which is
// what later runs match on within the section.
func upsertLore(ctx context.Context, ws *world.Workspace, doc *parser.Document) (bool, error) {
	section := doc.String("section")
	if section == "" {
		section = defaultLoreSection
	}
	text := doc.Title
	if doc.Body != "" {
		text += "\n\n" + doc.Body
	}
	apply := func(l *world.LoreEntry) {
		l.Section = section
		l.Text = text
	}

	for _, l := range ws.Lore.All() {
		heading, _, _ := strings.Cut(l.Text, "\n")
		if l.Section == section && strings.EqualFold(strings.TrimSpace(heading), doc.Title) {
			return false, modify(ctx, ws.Lore, l.ID, apply)
		}
	}
	l := &world.LoreEntry{}
	apply(l)
	return true, ws.Lore.Add(ctx, l)
}

// modify applies fn to the record with id, writing only when it changed.
func modify[T world.Record](ctx context.Context, c *world.Collection[T], id string, fn func(T)) error {
	_, err := c.Modify(ctx, id, func(item T) error {
		before, err := snapshot(item)
		if err != nil {
			return err
		}
		fn(item)
		if reflect.DeepEqual(before, item) {
			return errUnchanged
		}
		return nil
	})
	return err
}

func snapshot[T world.Record](item T) (T, error) {
	v := reflect.ValueOf(item)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		var zero T
		return zero, fmt.Errorf("unsupported record %T", item)
	}
	cp := reflect.New(v.Elem().Type())
	cp.Elem().Set(v.Elem())
	return cp.Interface().(T), nil
}

func walkMarkdownFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// isExcluded matches a path against exclude entries, which are either path
// prefixes or glob patterns applied to the file name.
func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
		if ok, _ := filepath.Match(exclude, filepath.Base(clean)); ok {
			return true
		}
	}
	return false
}
