// Package fill drives a template form through an interactive prompt session.
// It walks the currently-visible fields, feeds answers through the form
// controller, and loops over invalid fields until the form is submit-ready.
package fill

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/upload"
)

// Runner holds the collaborators of one fill session.
type Runner struct {
	Form   *form.Form
	Driver PromptDriver
	// BankOptions backs bank-select prompts; required when the template
	// declares one.
	BankOptions []schema.Option
	// MaxPasses bounds re-prompt rounds over invalid fields. Zero means 5.
	MaxPasses int
}

// Run prompts until the form validates, then confirms and returns the
// submission snapshot.
func (r *Runner) Run(ctx context.Context) (form.Snapshot, error) {
	if r.Form == nil || r.Driver == nil {
		return form.Snapshot{}, fmt.Errorf("fill: runner needs a form and a driver")
	}

	passes := r.MaxPasses
	if passes <= 0 {
		passes = 5
	}

	for pass := 0; pass < passes; pass++ {
		asked := false
		for _, section := range r.Form.Template().Sections {
			if err := r.announceSection(ctx, section, pass); err != nil {
				return form.Snapshot{}, err
			}
			for _, field := range section.Fields {
				if !r.shouldAsk(field, pass) {
					continue
				}
				asked = true
				if err := r.promptField(ctx, field); err != nil {
					return form.Snapshot{}, err
				}
			}
		}

		if r.Form.CanSubmit() {
			ok, err := r.Driver.Confirm(ctx, ConfirmConfig{Message: "¿Enviar solicitud?", Default: true})
			if err != nil {
				return form.Snapshot{}, err
			}
			if !ok {
				return form.Snapshot{}, ErrAborted
			}
			return r.Form.Snapshot()
		}

		if err := r.showErrors(ctx); err != nil {
			return form.Snapshot{}, err
		}
		if !asked {
			break
		}
	}
	return form.Snapshot{}, fmt.Errorf("fill: form still has validation errors")
}

// shouldAsk visits every visible editable field on the first pass and only
// fields with errors afterwards.
func (r *Runner) shouldAsk(field schema.Field, pass int) bool {
	if !r.Form.IsVisible(field.ID) || field.ReadOnly {
		return false
	}
	if pass == 0 {
		return true
	}
	_, hasErr := r.Form.FieldError(field.ID)
	return hasErr
}

func (r *Runner) announceSection(ctx context.Context, section schema.Section, pass int) error {
	if pass > 0 || section.Title == "" {
		return nil
	}
	for _, field := range section.Fields {
		if r.Form.IsVisible(field.ID) && !field.ReadOnly {
			return r.Driver.Info(ctx, "── "+section.Title)
		}
	}
	return nil
}

func (r *Runner) promptField(ctx context.Context, field schema.Field) error {
	switch field.Kind {
	case schema.KindText, schema.KindEmail, schema.KindPhone, schema.KindNumber,
		schema.KindCurrency, schema.KindMaskedDigits, schema.KindTextarea, schema.KindDate:
		return r.promptScalar(ctx, field)
	case schema.KindSelect, schema.KindRadio:
		return r.promptChoice(ctx, field, field.Options)
	case schema.KindBankSelect:
		if len(r.BankOptions) == 0 {
			return fmt.Errorf("fill: field %q needs a bank catalog", field.ID)
		}
		return r.promptChoice(ctx, field, r.BankOptions)
	case schema.KindCheckboxSet:
		return r.promptCheckboxSet(ctx, field)
	case schema.KindAccountSelector:
		return r.promptAccount(ctx, field)
	case schema.KindFile, schema.KindMultiFile:
		return r.promptFile(ctx, field)
	}
	return fmt.Errorf("fill: field %q has unknown kind %q", field.ID, field.Kind)
}

func (r *Runner) promptScalar(ctx context.Context, field schema.Field) error {
	current := ""
	if value, ok := r.Form.Value(field.ID); ok {
		current, _ = value.(string)
	}
	raw, err := r.Driver.Input(ctx, InputConfig{
		Message:     label(field),
		Default:     current,
		Help:        field.HelpText,
		Placeholder: field.Placeholder,
	})
	if err != nil {
		return err
	}
	return r.Form.SetValue(field.ID, raw)
}

func (r *Runner) promptChoice(ctx context.Context, field schema.Field, options []schema.Option) error {
	labels := make([]string, 0, len(options))
	for _, opt := range options {
		labels = append(labels, opt.Label)
	}
	idx, err := r.Driver.Select(ctx, SelectConfig{
		Message: label(field),
		Options: labels,
		Help:    field.HelpText,
	})
	if err != nil {
		return err
	}
	return r.Form.SetValue(field.ID, options[idx].Value)
}

func (r *Runner) promptCheckboxSet(ctx context.Context, field schema.Field) error {
	labels := make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		labels = append(labels, opt.Label)
	}
	current, _ := valueAsList(r.Form, field.ID)
	var defaults []int
	for i, opt := range field.Options {
		for _, selected := range current {
			if opt.Value == selected {
				defaults = append(defaults, i)
			}
		}
	}

	indices, err := r.Driver.MultiSelect(ctx, SelectConfig{
		Message:  label(field),
		Options:  labels,
		Defaults: defaults,
		Help:     field.HelpText,
	})
	if err != nil {
		return err
	}

	want := make(map[string]struct{}, len(indices))
	for _, idx := range indices {
		want[field.Options[idx].Value] = struct{}{}
	}
	// Toggle the delta so the stored selection matches the prompt result.
	for _, selected := range current {
		if _, keep := want[selected]; !keep {
			if err := r.Form.ToggleOption(field.ID, selected); err != nil {
				return err
			}
		}
	}
	current, _ = valueAsList(r.Form, field.ID)
	have := make(map[string]struct{}, len(current))
	for _, selected := range current {
		have[selected] = struct{}{}
	}
	for value := range want {
		if _, ok := have[value]; !ok {
			if err := r.Form.ToggleOption(field.ID, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) promptAccount(ctx context.Context, field schema.Field) error {
	idx, err := r.Driver.Select(ctx, SelectConfig{
		Message: label(field) + " — tipo de cuenta",
		Options: []string{"CLABE (18 dígitos)", "Cuenta (8-10 dígitos)"},
	})
	if err != nil {
		return err
	}
	sub := schema.AccountCLABE
	if idx == 1 {
		sub = schema.AccountNumber
	}
	if err := r.Form.SelectAccountType(field.ID, sub); err != nil {
		return err
	}

	raw, err := r.Driver.Input(ctx, InputConfig{
		Message: label(field),
		Help:    field.HelpText,
	})
	if err != nil {
		return err
	}
	return r.Form.SetValue(field.ID, raw)
}

func (r *Runner) promptFile(ctx context.Context, field schema.Field) error {
	raw, err := r.Driver.Input(ctx, InputConfig{
		Message: label(field) + " (ruta del archivo, vacío para omitir)",
		Help:    field.HelpText,
	})
	if err != nil {
		return err
	}
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}

	handle, err := HandleFromPath(path)
	if err != nil {
		return r.Driver.Info(ctx, err.Error())
	}
	if err := r.Form.AddFile(field.ID, handle); err != nil {
		// Rejections are recoverable; report and keep going.
		return r.Driver.Info(ctx, err.Error())
	}
	return nil
}

func (r *Runner) showErrors(ctx context.Context) error {
	for _, field := range r.Form.VisibleFields() {
		if msg, ok := r.Form.FieldError(field.ID); ok {
			if err := r.Driver.Info(ctx, fmt.Sprintf("✗ %s: %s", label(field), msg)); err != nil {
				return err
			}
		}
	}
	return nil
}

// HandleFromPath stats a local file and wraps it as an upload handle with the
// mime type derived from its extension.
func HandleFromPath(path string) (upload.Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return upload.Handle{}, fmt.Errorf("fill: %w", err)
	}
	if info.IsDir() {
		return upload.Handle{}, fmt.Errorf("fill: %s is a directory", path)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return upload.Handle{
		Name: filepath.Base(path),
		Size: info.Size(),
		MIME: mimeType,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func valueAsList(f *form.Form, fieldID string) ([]string, bool) {
	value, ok := f.Value(fieldID)
	if !ok {
		return nil, false
	}
	list, ok := value.([]string)
	return list, ok
}

func label(field schema.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}
