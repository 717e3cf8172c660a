// Package form implements the state controller that keeps values, visibility,
// and errors consistent while a user edits a template-driven form.
//
// Every edit funnels through one synchronous pipeline: normalize the input,
// commit the value, re-resolve visibility, purge state for fields that just
// became hidden, re-run validation, recompute progress. Each Form owns its
// state; concurrent template instances never share anything.
package form

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-formflow/pkg/dispatch"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

var (
	// ErrUnknownField flags edits addressing a field id the template does
	// not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrHiddenField flags edits addressing a field that is not currently
	// visible.
	ErrHiddenField = errors.New("field is not visible")
	// ErrReadOnlyField flags edits addressing a read-only field.
	ErrReadOnlyField = errors.New("field is read-only")
	// ErrNotSubmittable is returned by Snapshot while validation errors
	// remain.
	ErrNotSubmittable = errors.New("form has validation errors")
)

// Option customises a Form at construction.
type Option func(*Form)

// WithMessages overrides the validation message catalog.
func WithMessages(msgs validation.Messages) Option {
	return func(f *Form) { f.msgs = msgs }
}

// WithClock injects the reference clock used for date floors. Tests use this
// to pin "today".
func WithClock(now func() time.Time) Option {
	return func(f *Form) { f.now = now }
}

// Form is the single-actor state machine for one template instance.
type Form struct {
	tpl  schema.Template
	msgs validation.Messages
	now  func() time.Time

	values   map[string]any
	errs     map[string]string
	notices  map[string]string
	visible  visibility.Set
	subtypes map[string]schema.AccountType
}

// New validates the template and mounts an empty form over it. A template
// that fails validation is a fatal configuration error and never mounts.
func New(tpl schema.Template, opts ...Option) (*Form, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	f := &Form{
		tpl:      tpl,
		now:      time.Now,
		values:   make(map[string]any),
		errs:     make(map[string]string),
		notices:  make(map[string]string),
		subtypes: make(map[string]schema.AccountType),
	}
	for _, opt := range opts {
		opt(f)
	}

	visible, err := visibility.Resolve(tpl, f.values)
	if err != nil {
		return nil, err
	}
	f.visible = visible
	return f, nil
}

// Template returns the schema this form renders.
func (f *Form) Template() schema.Template { return f.tpl }

// SetValue dispatches a raw scalar edit for the field and runs the commit
// pipeline. Checkbox sets and file kinds use their dedicated methods.
func (f *Form) SetValue(fieldID, raw string) error {
	field, err := f.editableField(fieldID)
	if err != nil {
		return err
	}

	if field.Kind == schema.KindAccountSelector {
		sub, ok := f.subtypes[fieldID]
		if !ok {
			sub = schema.AccountCLABE
			f.subtypes[fieldID] = sub
		}
		return f.commit(fieldID, dispatch.Account(sub, raw))
	}

	value, err := f.normalizer().Scalar(field, raw)
	if err != nil {
		return err
	}
	return f.commit(fieldID, value)
}

// ToggleOption adds or removes one option of a checkbox-set field.
func (f *Form) ToggleOption(fieldID, option string) error {
	field, err := f.editableField(fieldID)
	if err != nil {
		return err
	}
	if field.Kind != schema.KindCheckboxSet {
		return fmt.Errorf("form: field %q is not a checkbox set", fieldID)
	}
	current, _ := f.values[fieldID].([]string)
	return f.commit(fieldID, dispatch.Toggle(current, option))
}

// SelectAccountType switches the active sub-type of a composite account
// selector. Switching clears any digits entered under the previous sub-type.
func (f *Form) SelectAccountType(fieldID string, sub schema.AccountType) error {
	field, err := f.editableField(fieldID)
	if err != nil {
		return err
	}
	if field.Kind != schema.KindAccountSelector {
		return fmt.Errorf("form: field %q is not an account selector", fieldID)
	}
	if sub != schema.AccountCLABE && sub != schema.AccountNumber {
		return fmt.Errorf("form: unknown account type %q", sub)
	}
	f.subtypes[fieldID] = sub
	return f.commit(fieldID, schema.AccountValue{Type: sub})
}

// AccountType reports the active sub-type for an account selector field.
func (f *Form) AccountType(fieldID string) (schema.AccountType, bool) {
	sub, ok := f.subtypes[fieldID]
	return sub, ok
}

// AddFile screens a selected upload against the template policy and, when
// accepted, appends it to the field's stored array. A rejected file never
// touches the store; the rejection message is surfaced on the field until it
// is edited again.
func (f *Form) AddFile(fieldID string, file upload.Handle) error {
	field, err := f.editableField(fieldID)
	if err != nil {
		return err
	}
	if !field.Kind.File() {
		return fmt.Errorf("form: field %q does not store files", fieldID)
	}

	current, _ := f.values[fieldID].([]upload.Handle)
	if rejection := f.normalizer().ScreenFile(f.tpl.Files, field, current, file); rejection != nil {
		f.notices[fieldID] = rejection.Message
		return rejection
	}
	return f.commit(fieldID, append(append([]upload.Handle(nil), current...), file))
}

// RemoveFile drops the file at index from the field's stored array.
func (f *Form) RemoveFile(fieldID string, index int) error {
	field, err := f.editableField(fieldID)
	if err != nil {
		return err
	}
	if !field.Kind.File() {
		return fmt.Errorf("form: field %q does not store files", fieldID)
	}
	current, _ := f.values[fieldID].([]upload.Handle)
	if index < 0 || index >= len(current) {
		return fmt.Errorf("form: field %q has no file at index %d", fieldID, index)
	}
	next := append([]upload.Handle(nil), current[:index]...)
	next = append(next, current[index+1:]...)
	return f.commit(fieldID, next)
}

// Value returns the stored value for a field id.
func (f *Form) Value(fieldID string) (any, bool) {
	value, ok := f.values[fieldID]
	return value, ok
}

// Values returns a copy of the value store.
func (f *Form) Values() map[string]any {
	out := make(map[string]any, len(f.values))
	for id, value := range f.values {
		out[id] = value
	}
	return out
}

// IsVisible reports whether the field is in the current visible set.
func (f *Form) IsVisible(fieldID string) bool { return f.visible.Has(fieldID) }

// VisibleFields returns the visible fields in declaration order.
func (f *Form) VisibleFields() []schema.Field {
	var out []schema.Field
	for _, field := range f.tpl.Fields() {
		if f.visible.Has(field.ID) {
			out = append(out, field)
		}
	}
	return out
}

// Errors returns the current error map, including pending file-rejection
// notices. Hidden fields never appear.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errs)+len(f.notices))
	for id, msg := range f.errs {
		out[id] = msg
	}
	for id, msg := range f.notices {
		out[id] = msg
	}
	return out
}

// FieldError returns the message attached to one field, if any.
func (f *Form) FieldError(fieldID string) (string, bool) {
	if msg, ok := f.notices[fieldID]; ok {
		return msg, true
	}
	msg, ok := f.errs[fieldID]
	return msg, ok
}

// Progress is the share of currently-required visible fields holding a
// non-empty value, in [0,1]. With no visible required fields it is 1.
func (f *Form) Progress() float64 {
	total := 0
	filled := 0
	for _, field := range f.tpl.Fields() {
		if !f.visible.Has(field.ID) {
			continue
		}
		if !validation.RequiredNow(field, f.values) {
			continue
		}
		total++
		if !validation.Empty(f.values[field.ID]) {
			filled++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(filled) / float64(total)
}

// CanSubmit reports whether an exhaustive validation pass over the visible
// fields comes back clean.
func (f *Form) CanSubmit() bool {
	return len(f.validateAll()) == 0 && len(f.notices) == 0
}

// editableField resolves and gate-checks the target of an edit.
func (f *Form) editableField(fieldID string) (schema.Field, error) {
	field, ok := f.tpl.FieldByID(fieldID)
	if !ok {
		return schema.Field{}, fmt.Errorf("form: field %q: %w", fieldID, ErrUnknownField)
	}
	if !f.visible.Has(fieldID) {
		return schema.Field{}, fmt.Errorf("form: field %q: %w", fieldID, ErrHiddenField)
	}
	if field.ReadOnly {
		return schema.Field{}, fmt.Errorf("form: field %q: %w", fieldID, ErrReadOnlyField)
	}
	return field, nil
}

// commit runs the edit pipeline: store, re-resolve visibility, purge state of
// fields that just became hidden, re-validate.
func (f *Form) commit(fieldID string, value any) error {
	f.values[fieldID] = value
	delete(f.notices, fieldID)

	next, err := visibility.Resolve(f.tpl, f.values)
	if err != nil {
		// Conditions were vetted at mount; an evaluation failure here is a
		// programming error, not user input.
		return fmt.Errorf("form: %w", err)
	}
	for id := range f.values {
		if !next.Has(id) {
			delete(f.values, id)
		}
	}
	// Notices and sub-types are purged against the visible set directly: a
	// rejected file leaves a notice without any stored value.
	for id := range f.notices {
		if !next.Has(id) {
			delete(f.notices, id)
		}
	}
	for id := range f.subtypes {
		if !next.Has(id) {
			delete(f.subtypes, id)
		}
	}
	f.visible = next
	f.errs = f.validateAll()
	return nil
}

func (f *Form) validateAll() map[string]string {
	return validation.Validate(f.tpl, f.visible, f.values, validation.Options{
		Messages: f.msgs,
		Now:      f.now,
	})
}

func (f *Form) normalizer() dispatch.Normalizer {
	return dispatch.Normalizer{Now: f.now, Messages: f.msgs}
}

// VisibleIDs returns the visible field ids sorted for stable output.
func (f *Form) VisibleIDs() []string {
	out := make([]string, 0, len(f.visible))
	for id := range f.visible {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
