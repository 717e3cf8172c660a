package visibility

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func chainTemplate() schema.Template {
	return schema.Template{
		ID: "cadena",
		Sections: []schema.Section{{
			ID: "principal",
			Fields: []schema.Field{
				{ID: "tipo", Kind: schema.KindSelect, Options: []schema.Option{
					{Value: "simple"}, {Value: "detallado"},
				}},
				{ID: "detalle", Kind: schema.KindText, VisibleWhen: `tipo == "detallado"`},
				{ID: "nota", Kind: schema.KindText, VisibleWhen: `detalle != ""`},
			},
		}},
	}
}

func TestResolveUnconditionalFieldsAlwaysVisible(t *testing.T) {
	t.Parallel()

	visible, err := Resolve(chainTemplate(), nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !visible.Has("tipo") {
		t.Fatalf("field without condition must be visible")
	}
	if visible.Has("detalle") || visible.Has("nota") {
		t.Fatalf("conditional fields should start hidden, got %v", visible)
	}
}

func TestResolveIsDeterministicAndIdempotent(t *testing.T) {
	t.Parallel()

	tpl := chainTemplate()
	values := map[string]any{"tipo": "detallado", "detalle": "algo"}

	first, err := Resolve(tpl, values)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	second, err := Resolve(tpl, values)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Resolve is not deterministic (-first +second):\n%s", diff)
	}
	for _, id := range []string{"tipo", "detalle", "nota"} {
		if !first.Has(id) {
			t.Fatalf("expected %s visible, got %v", id, first)
		}
	}
}

func TestResolveIgnoresStaleValuesOfHiddenFields(t *testing.T) {
	t.Parallel()

	// tipo flipped back to "simple" but detalle still holds a stale value
	// the controller has not purged yet. The chain must collapse anyway.
	values := map[string]any{"tipo": "simple", "detalle": "residuo"}

	visible, err := Resolve(chainTemplate(), values)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if visible.Has("detalle") {
		t.Fatalf("detalle should be hidden when tipo is simple")
	}
	if visible.Has("nota") {
		t.Fatalf("nota must not survive on detalle's stale value")
	}
}

func TestResolveDoesNotMutateValues(t *testing.T) {
	t.Parallel()

	values := map[string]any{"tipo": "simple", "detalle": "residuo"}
	if _, err := Resolve(chainTemplate(), values); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := map[string]any{"tipo": "simple", "detalle": "residuo"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("Resolve mutated its input (-want +got):\n%s", diff)
	}
}
