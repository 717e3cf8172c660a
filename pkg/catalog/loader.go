// Package catalog loads and indexes payment-request templates from a
// filesystem of JSON/YAML documents. Templates are trusted, pre-authored
// data; any template that fails schema validation aborts the load so a
// cyclic or malformed definition can never reach a form.
package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Store indexes loaded templates by id, preserving load order.
type Store struct {
	templates map[string]schema.Template
	order     []string
}

// LoadFS walks fsys and parses every JSON/YAML template document. Each file
// holds exactly one template.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{templates: make(map[string]schema.Template)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isTemplateFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}

		tpl, err := parseTemplate(data, path)
		if err != nil {
			return err
		}
		normalizeDisplayText(&tpl)

		if err := tpl.Validate(); err != nil {
			return fmt.Errorf("catalog: file %s: %w", path, err)
		}
		if _, exists := store.templates[tpl.ID]; exists {
			return fmt.Errorf("catalog: duplicate template id %q (file %s)", tpl.ID, path)
		}

		store.templates[tpl.ID] = tpl
		store.order = append(store.order, tpl.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Template returns the template for the supplied id.
func (s *Store) Template(id string) (schema.Template, bool) {
	if s == nil {
		return schema.Template{}, false
	}
	tpl, ok := s.templates[id]
	return tpl, ok
}

// IDs lists template ids in load order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// ByCategory returns templates carrying the given category, in load order.
func (s *Store) ByCategory(category string) []schema.Template {
	if s == nil {
		return nil
	}
	var out []schema.Template
	for _, id := range s.order {
		if tpl := s.templates[id]; tpl.Category == category {
			out = append(out, tpl)
		}
	}
	return out
}

// Empty reports whether the store holds any templates.
func (s *Store) Empty() bool {
	return s == nil || len(s.templates) == 0
}

func isTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func parseTemplate(data []byte, source string) (schema.Template, error) {
	if strings.TrimSpace(string(data)) == "" {
		return schema.Template{}, fmt.Errorf("catalog: file %s is empty", source)
	}

	var tpl schema.Template
	if err := json.Unmarshal(data, &tpl); err == nil {
		return tpl, nil
	}
	if err := yaml.Unmarshal(data, &tpl); err == nil {
		return tpl, nil
	}
	return schema.Template{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
}

// normalizeDisplayText trims identifiers and sanitizes the display-only
// strings in place.
func normalizeDisplayText(tpl *schema.Template) {
	tpl.ID = strings.TrimSpace(tpl.ID)
	tpl.Description = sanitizeMarkup(tpl.Description)
	for si := range tpl.Sections {
		section := &tpl.Sections[si]
		section.ID = strings.TrimSpace(section.ID)
		section.Description = sanitizeMarkup(section.Description)
		for fi := range section.Fields {
			field := &section.Fields[fi]
			field.ID = strings.TrimSpace(field.ID)
			field.HelpText = sanitizeMarkup(field.HelpText)
		}
	}
}
