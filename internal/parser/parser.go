// Package parser reads markdown notes with YAML frontmatter.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DocType is the kind of record a markdown note describes.
type DocType string

const (
	TypeCharacter DocType = "character"
	TypeNote      DocType = "note"
	TypeLore      DocType = "lore"
)

var docTypes = []DocType{TypeCharacter, TypeNote, TypeLore}

type Document struct {
	Frontmatter map[string]any
	Title       string
	Type        DocType
	Tags        []string
	Body        string
	SourceFile  string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
	ErrMissingType   = errors.New("frontmatter missing required 'type' field")
	ErrUnknownType   = errors.New("unknown document type")
)

const delimiter = "---"

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.TrimLeft(text, "\ufeff\n\t ")

	yamlText, body, ok := splitFrontmatter(text)
	if !ok {
		return nil, ErrNoFrontmatter
	}

	var frontmatter map[string]any
	if err := yaml.Unmarshal([]byte(yamlText), &frontmatter); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}

	title, ok := frontmatter["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}

	rawType, ok := frontmatter["type"].(string)
	if !ok || strings.TrimSpace(rawType) == "" {
		return nil, ErrMissingType
	}
	docType, err := parseType(rawType)
	if err != nil {
		return nil, err
	}

	tags, err := parseTags(frontmatter["tags"])
	if err != nil {
		return nil, err
	}

	return &Document{
		Frontmatter: frontmatter,
		Title:       strings.TrimSpace(title),
		Type:        docType,
		Tags:        tags,
		Body:        strings.TrimSpace(body),
	}, nil
}

// splitFrontmatter separates a leading "---" fenced block from the body. The
// closing fence must sit on its own line.
func splitFrontmatter(text string) (string, string, bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimSpace(first) != delimiter {
		return "", "", false
	}

	var yamlLines bytes.Buffer
	for {
		line, next, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, " \t") == delimiter {
			return yamlLines.String(), next, true
		}
		if !more {
			return "", "", false
		}
		yamlLines.WriteString(line)
		yamlLines.WriteByte('\n')
		rest = next
	}
}

func parseType(value string) (DocType, error) {
	for _, t := range docTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(value)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownType, value)
}

func parseTags(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings")
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			tags = append(tags, s)
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("tags must be string or list of strings")
	}
}

// String returns a scalar frontmatter field as text.
func (d *Document) String(key string) string {
	switch v := d.Frontmatter[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int returns an integer frontmatter field. Missing fields report ok=false.
func (d *Document) Int(key string) (int, bool, error) {
	switch v := d.Frontmatter[key].(type) {
	case nil:
		return 0, false, nil
	case int:
		return v, true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false, fmt.Errorf("%s must be a whole number", key)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be a whole number", key)
	}
}

func (d *Document) Bool(key string) bool {
	v, _ := d.Frontmatter[key].(bool)
	return v
}
