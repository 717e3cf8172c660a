package schema

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/goliatone/go-formflow/pkg/visibility/expr"
)

var (
	errTemplateIDMissing = errors.New("schema: template id is required")
	errNoSections        = errors.New("schema: template declares no sections")
)

// Validate checks the template's structural invariants. A failing template is
// a fatal configuration error: the engine refuses to mount a form over it.
//
// Enforced invariants:
//   - template and field ids are present; field ids are unique
//   - every field kind belongs to the closed enumeration
//   - choice kinds (except bank-select, whose options come from an external
//     catalog) declare at least one option
//   - pattern rules compile
//   - visibility conditions parse and reference only fields declared
//     earlier, which rules out dependency cycles by construction
func (t Template) Validate() error {
	if t.ID == "" {
		return errTemplateIDMissing
	}
	if len(t.Sections) == 0 {
		return errNoSections
	}

	declared := make(map[string]struct{})
	for _, section := range t.Sections {
		for _, field := range section.Fields {
			if field.ID == "" {
				return fmt.Errorf("schema: template %q: section %q has a field without id", t.ID, section.ID)
			}
			if _, dup := declared[field.ID]; dup {
				return fmt.Errorf("schema: template %q: duplicate field id %q", t.ID, field.ID)
			}
			if !field.Kind.Valid() {
				return fmt.Errorf("schema: template %q: field %q has unknown kind %q", t.ID, field.ID, field.Kind)
			}
			if field.Kind.Choice() && field.Kind != KindBankSelect && len(field.Options) == 0 {
				return fmt.Errorf("schema: template %q: field %q is a choice kind without options", t.ID, field.ID)
			}
			if field.Rules.Pattern != "" {
				if _, err := regexp.Compile(field.Rules.Pattern); err != nil {
					return fmt.Errorf("schema: template %q: field %q: invalid pattern: %w", t.ID, field.ID, err)
				}
			}
			if err := validateCondition(t.ID, field, declared); err != nil {
				return err
			}
			declared[field.ID] = struct{}{}
		}
	}

	for _, section := range t.Sections {
		for _, field := range section.Fields {
			if field.Rules.RequiredWith == "" {
				continue
			}
			if _, ok := declared[field.Rules.RequiredWith]; !ok {
				return fmt.Errorf("schema: template %q: field %q requiredWith references unknown field %q",
					t.ID, field.ID, field.Rules.RequiredWith)
			}
		}
	}
	return nil
}

func validateCondition(templateID string, field Field, declared map[string]struct{}) error {
	if field.VisibleWhen == "" {
		return nil
	}
	refs, err := expr.Refs(field.VisibleWhen)
	if err != nil {
		return fmt.Errorf("schema: template %q: field %q: invalid visibility condition: %w", templateID, field.ID, err)
	}
	for _, ref := range refs {
		if ref == field.ID {
			return fmt.Errorf("schema: template %q: field %q: visibility condition references itself", templateID, field.ID)
		}
		if _, ok := declared[ref]; !ok {
			return fmt.Errorf("schema: template %q: field %q: visibility condition references %q, which is not declared earlier",
				templateID, field.ID, ref)
		}
	}
	return nil
}
