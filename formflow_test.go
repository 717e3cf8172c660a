package formflow

import (
	"testing"
	"testing/fstest"
)

const engineTemplate = `
id: reembolso-gastos
name: Reembolso de gastos
category: gastos
sections:
  - id: datos
    fields:
      - id: concepto
        kind: text
        rules:
          required: true
`

func TestEngineLoadsCatalogAndMountsForms(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"reembolso.yaml": {Data: []byte(engineTemplate)}}
	engine, err := New(WithCatalogFS(fsys))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if engine.Catalog().Empty() {
		t.Fatalf("catalog should hold the loaded template")
	}

	f, err := engine.NewForm("reembolso-gastos")
	if err != nil {
		t.Fatalf("NewForm returned error: %v", err)
	}
	if err := f.SetValue("concepto", "Taxi al aeropuerto"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if !f.CanSubmit() {
		t.Fatalf("form should be submittable, errors: %v", f.Errors())
	}

	// Forms are isolated instances.
	second, err := engine.NewForm("reembolso-gastos")
	if err != nil {
		t.Fatalf("NewForm returned error: %v", err)
	}
	if _, ok := second.Value("concepto"); ok {
		t.Fatalf("a fresh form must not share state with earlier instances")
	}
}

func TestEngineMessageOverridesPropagate(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"reembolso.yaml": {Data: []byte(engineTemplate)}}
	engine, err := New(WithCatalogFS(fsys), WithMessages(Messages{Required: "Campo requerido"}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	f, err := engine.NewForm("reembolso-gastos")
	if err != nil {
		t.Fatalf("NewForm returned error: %v", err)
	}
	if err := f.SetValue("concepto", " "); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if msg, _ := f.FieldError("concepto"); msg != "Campo requerido" {
		t.Fatalf("override not applied, got %q", msg)
	}
}

func TestEngineUnknownTemplate(t *testing.T) {
	t.Parallel()

	engine, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := engine.NewForm("nada"); err == nil {
		t.Fatalf("engine without a catalog must refuse NewForm")
	}
}

func TestNewFormDirect(t *testing.T) {
	t.Parallel()

	tpl := Template{
		ID: "directo",
		Sections: []Section{{ID: "unica", Fields: []Field{
			{ID: "nota", Kind: "textarea"},
		}}},
	}
	f, err := NewForm(tpl)
	if err != nil {
		t.Fatalf("NewForm returned error: %v", err)
	}
	if !f.CanSubmit() {
		t.Fatalf("an all-optional form should be submittable immediately")
	}
}
