package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"worldsmith/internal/world"
)

type TemplateSet struct {
	Version   int             `yaml:"version"`
	Templates []WorldTemplate `yaml:"templates"`

	index map[string]*WorldTemplate
}

type WorldTemplate struct {
	Name      string `yaml:"name"`
	Geography string `yaml:"geography"`
	Races     string `yaml:"races"`
	Magic     string `yaml:"magic"`
}

// DefaultTemplates is used when a project configures no templates file.
func DefaultTemplates() *TemplateSet {
	set := &TemplateSet{
		Version: 1,
		Templates: []WorldTemplate{
			{
				Name:      "fantasy",
				Geography: "Varied continents of forests, mountains and deserts",
				Races:     "Humans, elves, dwarves, orcs",
				Magic:     "Elemental magic (fire, water, air, earth)",
			},
			{
				Name:      "science fiction",
				Geography: "Planets of differing climates, space stations",
				Races:     "Humans, androids, aliens",
				Magic:     "Technological abilities, cybermancy",
			},
			{
				Name:      "post-apocalyptic",
				Geography: "Ruined cities, wastelands, radioactive zones",
				Races:     "Mutants, human survivors, predatory beasts",
				Magic:     "Mutant abilities, relic artifacts",
			},
		},
	}
	set.buildIndex()
	return set
}

func LoadTemplates(path string) (*TemplateSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	var set TemplateSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	if err := validateTemplates(&set); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	set.buildIndex()
	return &set, nil
}

// TemplatesFor loads the project's templates file, or the defaults when the
// project names none.
func TemplatesFor(cfg *ProjectConfig) (*TemplateSet, error) {
	if cfg == nil || strings.TrimSpace(cfg.Templates) == "" {
		return DefaultTemplates(), nil
	}
	return LoadTemplates(cfg.Resolve(cfg.Templates))
}

func validateTemplates(s *TemplateSet) error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported version: %d", s.Version)
	}
	if len(s.Templates) == 0 {
		return fmt.Errorf("at least one template is required")
	}

	names := make(map[string]struct{})
	for i, tmpl := range s.Templates {
		if strings.TrimSpace(tmpl.Name) == "" {
			return fmt.Errorf("template %d name is required", i)
		}
		key := strings.ToLower(tmpl.Name)
		if _, exists := names[key]; exists {
			return fmt.Errorf("duplicate template name: %s", tmpl.Name)
		}
		names[key] = struct{}{}
	}
	return nil
}

func (s *TemplateSet) buildIndex() {
	s.index = make(map[string]*WorldTemplate, len(s.Templates))
	for i := range s.Templates {
		tmpl := &s.Templates[i]
		s.index[strings.ToLower(tmpl.Name)] = tmpl
	}
}

func (s *TemplateSet) ByName(name string) (*WorldTemplate, bool) {
	if s == nil {
		return nil, false
	}
	tmpl, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	return tmpl, ok
}

// Record converts the template to the stored world entity.
func (t *WorldTemplate) Record() *world.Template {
	return &world.Template{
		Name:      t.Name,
		Geography: t.Geography,
		Races:     t.Races,
		Magic:     t.Magic,
	}
}

// Records returns every template as a world entity, in file order.
func (s *TemplateSet) Records() []*world.Template {
	out := make([]*world.Template, 0, len(s.Templates))
	for i := range s.Templates {
		out = append(out, s.Templates[i].Record())
	}
	return out
}

// Marshal renders the set as YAML, as init writes it.
func (s *TemplateSet) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding templates: %w", err)
	}
	return data, nil
}
