// Package formflow wires the template catalog, bank options, and form
// controller into one entry point. The heavy lifting lives in the pkg
// subpackages; this facade exists so most callers only import one path.
package formflow

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/goliatone/go-formflow/pkg/catalog"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Re-exported schema types so callers can author templates without importing
// the subpackage.
type (
	Template   = schema.Template
	Section    = schema.Section
	Field      = schema.Field
	FieldKind  = schema.FieldKind
	Option     = schema.Option
	Rules      = schema.Rules
	FilePolicy = schema.FilePolicy
	Handle     = upload.Handle
	Form       = form.Form
	Snapshot   = form.Snapshot
	Messages   = validation.Messages
)

// EngineOption customises the engine configuration.
type EngineOption func(*Engine)

// WithCatalog injects an already-loaded template store.
func WithCatalog(store *catalog.Store) EngineOption {
	return func(e *Engine) { e.store = store }
}

// WithCatalogFS loads the template catalog from a filesystem during New.
func WithCatalogFS(fsys fs.FS) EngineOption {
	return func(e *Engine) { e.catalogFS = fsys }
}

// WithMessages overrides the validation message catalog for every form the
// engine mounts.
func WithMessages(msgs validation.Messages) EngineOption {
	return func(e *Engine) { e.msgs = msgs }
}

// WithClock pins the reference clock used for date floors.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// Engine holds session-independent configuration. Each NewForm call returns
// an isolated form instance; the engine itself carries no per-form state.
type Engine struct {
	store     *catalog.Store
	catalogFS fs.FS
	msgs      validation.Messages
	now       func() time.Time
}

// New constructs an engine, loading the catalog when a filesystem was
// supplied.
func New(options ...EngineOption) (*Engine, error) {
	e := &Engine{}
	for _, opt := range options {
		opt(e)
	}
	if e.store == nil && e.catalogFS != nil {
		store, err := catalog.LoadFS(e.catalogFS)
		if err != nil {
			return nil, err
		}
		e.store = store
	}
	return e, nil
}

// Catalog returns the engine's template store, which may be nil when the
// engine was built without one.
func (e *Engine) Catalog() *catalog.Store { return e.store }

// NewForm mounts a fresh form over the named catalog template.
func (e *Engine) NewForm(templateID string) (*form.Form, error) {
	if e.store == nil {
		return nil, fmt.Errorf("formflow: engine has no template catalog")
	}
	tpl, ok := e.store.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("formflow: template %q not found", templateID)
	}
	return form.New(tpl, e.formOptions()...)
}

// NewForm mounts a form directly over a template, bypassing the catalog.
func NewForm(tpl schema.Template, opts ...form.Option) (*form.Form, error) {
	return form.New(tpl, opts...)
}

func (e *Engine) formOptions() []form.Option {
	var opts []form.Option
	if e.msgs != (validation.Messages{}) {
		opts = append(opts, form.WithMessages(e.msgs))
	}
	if e.now != nil {
		opts = append(opts, form.WithClock(e.now))
	}
	return opts
}
