package validation

import (
	"testing"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func runValidate(t *testing.T, tpl schema.Template, values map[string]any) map[string]string {
	t.Helper()
	visible, err := visibility.Resolve(tpl, values)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	return Validate(tpl, visible, values, Options{Now: fixedClock})
}

func singleField(field schema.Field) schema.Template {
	return schema.Template{
		ID:       "prueba",
		Sections: []schema.Section{{ID: "unica", Fields: []schema.Field{field}}},
	}
}

func TestRequiredShortCircuits(t *testing.T) {
	t.Parallel()

	// An empty required masked field reports only the required message,
	// never the length rule.
	tpl := singleField(schema.Field{
		ID:    "cuenta",
		Kind:  schema.KindMaskedDigits,
		Rules: schema.Rules{Required: true, ExactLength: 18},
	})

	errs := runValidate(t, tpl, map[string]any{})
	if got := errs["cuenta"]; got != DefaultMessages().Required {
		t.Fatalf("error = %q, want the required message", got)
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
}

func TestOptionalEmptyFieldHasNoErrors(t *testing.T) {
	t.Parallel()

	tpl := singleField(schema.Field{
		ID:    "cuenta",
		Kind:  schema.KindMaskedDigits,
		Rules: schema.Rules{ExactLength: 18},
	})
	if errs := runValidate(t, tpl, map[string]any{}); len(errs) != 0 {
		t.Fatalf("optional empty field must not error, got %v", errs)
	}
}

func TestCLABESubTypeLengths(t *testing.T) {
	t.Parallel()

	tpl := singleField(schema.Field{ID: "cuenta_destino", Kind: schema.KindAccountSelector})

	cases := []struct {
		name    string
		digits  string
		wantErr bool
	}{
		{"too short", "12345", true},
		{"seventeen", "12345678901234567", true},
		{"exact eighteen", "123456789012345678", false},
		{"nineteen", "1234567890123456789", true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			values := map[string]any{
				"cuenta_destino": schema.AccountValue{Type: schema.AccountCLABE, Digits: tc.digits},
			}
			errs := runValidate(t, tpl, values)
			msg, found := errs["cuenta_destino"]
			if found != tc.wantErr {
				t.Fatalf("digits %q: error presence = %v, want %v (%q)", tc.digits, found, tc.wantErr, msg)
			}
			if found && msg != "La CLABE debe tener exactamente 18 dígitos" {
				t.Fatalf("digits %q: message = %q", tc.digits, msg)
			}
		})
	}
}

func TestAccountSubTypeLengths(t *testing.T) {
	t.Parallel()

	tpl := singleField(schema.Field{ID: "cuenta_destino", Kind: schema.KindAccountSelector})

	cases := []struct {
		digits  string
		wantErr bool
	}{
		{"1234567", true},
		{"12345678", false},
		{"123456789", false},
		{"1234567890", false},
	}

	for _, tc := range cases {
		values := map[string]any{
			"cuenta_destino": schema.AccountValue{Type: schema.AccountNumber, Digits: tc.digits},
		}
		errs := runValidate(t, tpl, values)
		msg, found := errs["cuenta_destino"]
		if found != tc.wantErr {
			t.Fatalf("digits %q: error presence = %v, want %v", tc.digits, found, tc.wantErr)
		}
		if found && msg != "La cuenta debe tener entre 8 y 10 dígitos" {
			t.Fatalf("digits %q: message = %q", tc.digits, msg)
		}
	}
}

func TestLengthRulesCountCharacters(t *testing.T) {
	t.Parallel()

	// "señal" is five characters but six bytes.
	tpl := singleField(schema.Field{
		ID:    "clave",
		Kind:  schema.KindText,
		Rules: schema.Rules{MaxLength: 5},
	})
	if errs := runValidate(t, tpl, map[string]any{"clave": "señal"}); len(errs) != 0 {
		t.Fatalf("five-character value must satisfy maxLength 5, got %v", errs)
	}
	if errs := runValidate(t, tpl, map[string]any{"clave": "señales"}); errs["clave"] == "" {
		t.Fatalf("seven characters must violate maxLength 5")
	}

	tpl = singleField(schema.Field{
		ID:    "clave",
		Kind:  schema.KindText,
		Rules: schema.Rules{ExactLength: 3},
	})
	if errs := runValidate(t, tpl, map[string]any{"clave": "año"}); len(errs) != 0 {
		t.Fatalf("three-character value must satisfy exactLength 3, got %v", errs)
	}

	tpl = singleField(schema.Field{
		ID:    "clave",
		Kind:  schema.KindText,
		Rules: schema.Rules{MinLength: 4},
	})
	if errs := runValidate(t, tpl, map[string]any{"clave": "año"}); errs["clave"] == "" {
		t.Fatalf("three characters must violate minLength 4")
	}
}

func TestEmailAndNumericRules(t *testing.T) {
	t.Parallel()

	min, max := 1.0, 50000.0
	tpl := schema.Template{
		ID: "pago",
		Sections: []schema.Section{{ID: "unica", Fields: []schema.Field{
			{ID: "correo", Kind: schema.KindEmail},
			{ID: "monto", Kind: schema.KindCurrency, Rules: schema.Rules{Min: &min, Max: &max}},
		}}},
	}

	errs := runValidate(t, tpl, map[string]any{"correo": "no-es-correo", "monto": "99999"})
	if errs["correo"] != DefaultMessages().InvalidEmail {
		t.Fatalf("correo error = %q", errs["correo"])
	}
	if errs["monto"] == "" {
		t.Fatalf("monto above max must error")
	}

	errs = runValidate(t, tpl, map[string]any{"correo": "ana@empresa.mx", "monto": "1500.50"})
	if len(errs) != 0 {
		t.Fatalf("valid values must not error, got %v", errs)
	}
}

func TestUnknownOptionRejected(t *testing.T) {
	t.Parallel()

	tpl := singleField(schema.Field{
		ID:      "tipo",
		Kind:    schema.KindSelect,
		Options: []schema.Option{{Value: "viaje"}, {Value: "comida"}},
	})
	errs := runValidate(t, tpl, map[string]any{"tipo": "hospedaje"})
	if errs["tipo"] != DefaultMessages().UnknownOption {
		t.Fatalf("tipo error = %q", errs["tipo"])
	}
}

func TestDateRules(t *testing.T) {
	t.Parallel()

	tpl := singleField(schema.Field{ID: "fecha", Kind: schema.KindDate})

	errs := runValidate(t, tpl, map[string]any{"fecha": "2026-03-09"})
	if errs["fecha"] != DefaultMessages().DateInPast {
		t.Fatalf("past date error = %q", errs["fecha"])
	}

	errs = runValidate(t, tpl, map[string]any{"fecha": "2026-03-10"})
	if len(errs) != 0 {
		t.Fatalf("today must pass, got %v", errs)
	}

	errs = runValidate(t, tpl, map[string]any{"fecha": "10/03/2026"})
	if errs["fecha"] != DefaultMessages().InvalidDate {
		t.Fatalf("malformed date error = %q", errs["fecha"])
	}
}

func TestFileConstraintsRecheckedAtValidation(t *testing.T) {
	t.Parallel()

	tpl := singleField(schema.Field{ID: "comprobantes", Kind: schema.KindMultiFile})
	tpl.Files = schema.FilePolicy{MaxSize: 1 << 20, AllowedMIME: []string{"application/pdf"}}

	values := map[string]any{
		"comprobantes": []upload.Handle{{Name: "grande.pdf", Size: 2 << 20, MIME: "application/pdf"}},
	}
	errs := runValidate(t, tpl, values)
	if errs["comprobantes"] == "" {
		t.Fatalf("oversized stored file must be flagged even past the dispatcher")
	}
}

func TestConditionalRequiredWith(t *testing.T) {
	t.Parallel()

	tpl := schema.Template{
		ID: "devolucion",
		Sections: []schema.Section{{ID: "cuenta", Fields: []schema.Field{
			{ID: "cuenta", Kind: schema.KindMaskedDigits},
			{ID: "banco_cuenta", Kind: schema.KindBankSelect, Rules: schema.Rules{RequiredWith: "cuenta"}},
		}}},
	}

	// Both empty: optional, clean.
	if errs := runValidate(t, tpl, map[string]any{}); len(errs) != 0 {
		t.Fatalf("expected no errors while cuenta is empty, got %v", errs)
	}

	// A non-empty cuenta makes banco_cuenta required.
	errs := runValidate(t, tpl, map[string]any{"cuenta": "00112233"})
	if errs["banco_cuenta"] != DefaultMessages().Required {
		t.Fatalf("banco_cuenta error = %q, want required", errs["banco_cuenta"])
	}

	errs = runValidate(t, tpl, map[string]any{"cuenta": "00112233", "banco_cuenta": "072"})
	if len(errs) != 0 {
		t.Fatalf("expected no errors once banco_cuenta is set, got %v", errs)
	}
}

func TestHiddenFieldsNeverAppearInErrorMap(t *testing.T) {
	t.Parallel()

	tpl := schema.Template{
		ID: "oculto",
		Sections: []schema.Section{{ID: "unica", Fields: []schema.Field{
			{ID: "tipo", Kind: schema.KindSelect, Options: []schema.Option{{Value: "a"}, {Value: "b"}}},
			{ID: "extra", Kind: schema.KindText, Rules: schema.Rules{Required: true}, VisibleWhen: `tipo == "b"`},
		}}},
	}

	errs := runValidate(t, tpl, map[string]any{"tipo": "a"})
	if _, ok := errs["extra"]; ok {
		t.Fatalf("hidden required field must not error, got %v", errs)
	}
}

func TestMessageOverrides(t *testing.T) {
	t.Parallel()

	tpl := singleField(schema.Field{ID: "concepto", Kind: schema.KindText, Rules: schema.Rules{Required: true}})
	visible, err := visibility.Resolve(tpl, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	errs := Validate(tpl, visible, nil, Options{
		Messages: Messages{Required: "Campo requerido"},
		Now:      fixedClock,
	})
	if errs["concepto"] != "Campo requerido" {
		t.Fatalf("override not applied: %q", errs["concepto"])
	}
}

func TestHumanSize(t *testing.T) {
	t.Parallel()

	cases := map[int64]string{
		10 << 20: "10 MB",
		512:      "512 bytes",
		2 << 10:  "2 KB",
	}
	for bytes, want := range cases {
		if got := HumanSize(bytes); got != want {
			t.Fatalf("HumanSize(%d) = %q, want %q", bytes, got, want)
		}
	}
}
