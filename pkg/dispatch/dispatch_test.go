package dispatch

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)
}

func TestScalarShaping(t *testing.T) {
	t.Parallel()

	n := Normalizer{Now: fixedClock}

	cases := []struct {
		name string
		kind schema.FieldKind
		raw  string
		want string
	}{
		{"text verbatim", schema.KindText, "  Hola mundo ", "  Hola mundo "},
		{"phone verbatim", schema.KindPhone, "+52 55 1234 5678", "+52 55 1234 5678"},
		{"number trimmed", schema.KindNumber, " 42.5 ", "42.5"},
		{"currency strips formatting", schema.KindCurrency, "$1,234.56", "1234.56"},
		{"currency keeps sign", schema.KindCurrency, "-$500", "-500"},
		{"masked digits only", schema.KindMaskedDigits, "12-34 56a78", "12345678"},
		{"select trimmed", schema.KindSelect, " viaje ", "viaje"},
		{"date canonical", schema.KindDate, "2026-04-01", "2026-04-01"},
		{"date clamped to today", schema.KindDate, "2026-01-15", "2026-03-10"},
		{"date invalid passes through", schema.KindDate, "mañana", "mañana"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := n.Scalar(schema.Field{ID: "campo", Kind: tc.kind}, tc.raw)
			if err != nil {
				t.Fatalf("Scalar returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Scalar(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestScalarRejectsNonScalarKinds(t *testing.T) {
	t.Parallel()

	n := Normalizer{}
	for _, kind := range []schema.FieldKind{
		schema.KindCheckboxSet, schema.KindFile, schema.KindMultiFile, schema.KindAccountSelector,
	} {
		if _, err := n.Scalar(schema.Field{ID: "campo", Kind: kind}, "x"); err == nil {
			t.Fatalf("Scalar should reject kind %q", kind)
		}
	}
}

func TestAccountShaping(t *testing.T) {
	t.Parallel()

	got := Account(schema.AccountCLABE, "01-2345 6789012345678999")
	want := schema.AccountValue{Type: schema.AccountCLABE, Digits: "012345678901234567"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Account mismatch (-want +got):\n%s", diff)
	}

	got = Account(schema.AccountNumber, "00 11 22 33 44 55")
	if got.Digits != "0011223344" {
		t.Fatalf("account digits should cap at 10, got %q", got.Digits)
	}
}

func TestToggle(t *testing.T) {
	t.Parallel()

	selected := Toggle(nil, "efectivo")
	selected = Toggle(selected, "transferencia")
	if diff := cmp.Diff([]string{"efectivo", "transferencia"}, selected); diff != "" {
		t.Fatalf("Toggle mismatch (-want +got):\n%s", diff)
	}

	selected = Toggle(selected, "efectivo")
	if diff := cmp.Diff([]string{"transferencia"}, selected); diff != "" {
		t.Fatalf("Toggle removal mismatch (-want +got):\n%s", diff)
	}
}

func TestScreenFileSize(t *testing.T) {
	t.Parallel()

	n := Normalizer{}
	policy := schema.FilePolicy{MaxSize: 10 << 20}
	field := schema.Field{ID: "comprobante", Kind: schema.KindMultiFile}

	rejection := n.ScreenFile(policy, field, nil, upload.Handle{Name: "grande.pdf", Size: 12 << 20, MIME: "application/pdf"})
	if rejection == nil {
		t.Fatalf("12MB file must be rejected against a 10MB policy")
	}
	if rejection.Reason != RejectedSize {
		t.Fatalf("reason = %q, want %q", rejection.Reason, RejectedSize)
	}
	if rejection.FieldID != "comprobante" {
		t.Fatalf("rejection field = %q", rejection.FieldID)
	}

	if r := n.ScreenFile(policy, field, nil, upload.Handle{Name: "ok.pdf", Size: 9 << 20, MIME: "application/pdf"}); r != nil {
		t.Fatalf("9MB file should pass: %v", r)
	}
}

func TestScreenFileMIME(t *testing.T) {
	t.Parallel()

	n := Normalizer{}
	policy := schema.FilePolicy{AllowedMIME: []string{"application/pdf", "image/png"}}
	field := schema.Field{ID: "comprobante", Kind: schema.KindMultiFile}

	rejection := n.ScreenFile(policy, field, nil, upload.Handle{Name: "nota.txt", MIME: "text/plain"})
	if rejection == nil || rejection.Reason != RejectedMIME {
		t.Fatalf("text/plain must be rejected, got %v", rejection)
	}

	if r := n.ScreenFile(policy, field, nil, upload.Handle{Name: "foto.png", MIME: "image/PNG"}); r != nil {
		t.Fatalf("mime match should be case-insensitive: %v", r)
	}
}

func TestScreenFilePartialMessageOverride(t *testing.T) {
	t.Parallel()

	// Overriding one message must not leave the rejection formats empty.
	n := Normalizer{Messages: validation.Messages{Required: "Requerido"}}
	policy := schema.FilePolicy{MaxSize: 10 << 20}
	field := schema.Field{ID: "comprobante", Kind: schema.KindMultiFile}

	rejection := n.ScreenFile(policy, field, nil, upload.Handle{Name: "grande.pdf", Size: 12 << 20, MIME: "application/pdf"})
	if rejection == nil {
		t.Fatalf("12MB file must be rejected against a 10MB policy")
	}
	if want := "El archivo supera el tamaño máximo de 10 MB"; rejection.Message != want {
		t.Fatalf("rejection message = %q, want %q", rejection.Message, want)
	}
}

func TestScreenFileCount(t *testing.T) {
	t.Parallel()

	n := Normalizer{}
	single := schema.Field{ID: "factura", Kind: schema.KindFile}
	current := []upload.Handle{{Name: "uno.pdf"}}

	rejection := n.ScreenFile(schema.FilePolicy{}, single, current, upload.Handle{Name: "dos.pdf"})
	if rejection == nil || rejection.Reason != RejectedCount {
		t.Fatalf("single-file field must cap at one, got %v", rejection)
	}

	multi := schema.Field{ID: "comprobantes", Kind: schema.KindMultiFile}
	policy := schema.FilePolicy{MaxCount: 2}
	rejection = n.ScreenFile(policy, multi, []upload.Handle{{}, {}}, upload.Handle{Name: "tres.pdf"})
	if rejection == nil || rejection.Reason != RejectedCount {
		t.Fatalf("multi-file field must honor MaxCount, got %v", rejection)
	}
}
