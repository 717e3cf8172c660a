// Package visibility computes the set of currently-visible fields for a
// template given the form's value store.
package visibility

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility/expr"
)

// Set holds visible field ids.
type Set map[string]struct{}

// Has reports whether the field id is visible.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Resolve evaluates every field's condition in declaration order and returns
// the visible set. It is deterministic and side-effect free.
//
// Conditions may only reference fields declared earlier (enforced by
// schema.Template.Validate), so a single linear pass suffices. Values of
// fields already determined hidden during the pass are ignored, which makes
// the result insensitive to stale entries the controller has not purged yet
// and therefore idempotent.
func Resolve(tpl schema.Template, values map[string]any) (Set, error) {
	visible := make(Set)
	effective := make(map[string]any, len(values))
	for id, value := range values {
		effective[id] = value
	}

	for _, field := range tpl.Fields() {
		if field.VisibleWhen == "" {
			visible[field.ID] = struct{}{}
			continue
		}
		shown, err := expr.Eval(field.VisibleWhen, effective)
		if err != nil {
			return nil, fmt.Errorf("visibility: field %q: %w", field.ID, err)
		}
		if shown {
			visible[field.ID] = struct{}{}
			continue
		}
		// Hidden fields contribute nothing to downstream conditions even
		// when a stale value is still in the store.
		delete(effective, field.ID)
	}
	return visible, nil
}
