package form

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/upload"
)

// Snapshot is the payload handed to the submission collaborator once the
// exhaustive validation pass is clean. File fields carry their raw upload
// handles for multipart transport; everything else keeps its stored
// string/array form. The engine's checks are advisory; the receiving side is
// expected to re-validate.
type Snapshot struct {
	TemplateID      string                     `json:"templateId"`
	TemplateVersion string                     `json:"templateVersion,omitempty"`
	Fields          map[string]any             `json:"fields"`
	Files           map[string][]upload.Handle `json:"-"`
}

// Snapshot freezes the current visible values for submission. It fails with
// ErrNotSubmittable while any visible field still has an error; the form's
// state is left untouched either way, so a failed external submission can be
// retried without re-entering data.
func (f *Form) Snapshot() (Snapshot, error) {
	if errs := f.validateAll(); len(errs) > 0 {
		return Snapshot{}, fmt.Errorf("form: template %q: %w (%d fields)", f.tpl.ID, ErrNotSubmittable, len(errs))
	}
	if len(f.notices) > 0 {
		return Snapshot{}, fmt.Errorf("form: template %q: %w (pending file rejections)", f.tpl.ID, ErrNotSubmittable)
	}

	snap := Snapshot{
		TemplateID:      f.tpl.ID,
		TemplateVersion: f.tpl.Version,
		Fields:          make(map[string]any),
		Files:           make(map[string][]upload.Handle),
	}
	for _, field := range f.tpl.Fields() {
		if !f.visible.Has(field.ID) {
			continue
		}
		value, ok := f.values[field.ID]
		if !ok {
			continue
		}
		switch typed := value.(type) {
		case []upload.Handle:
			snap.Files[field.ID] = append([]upload.Handle(nil), typed...)
		case []string:
			snap.Fields[field.ID] = append([]string(nil), typed...)
		case schema.AccountValue:
			snap.Fields[field.ID] = typed
		default:
			snap.Fields[field.ID] = typed
		}
	}
	return snap, nil
}
