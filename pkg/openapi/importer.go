// Package openapi derives template drafts from OpenAPI documents so catalog
// authors can bootstrap a plantilla from an existing API operation instead of
// writing the schema by hand. The output is a draft: visibility conditions
// and cross-field rules are authored afterwards.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var errOperationNotFound = errors.New("openapi: operation not found")

// Import loads an OpenAPI document and maps the named operation's request
// body onto a single-section template draft.
func Import(ctx context.Context, raw []byte, operationID string) (schema.Template, error) {
	if len(raw) == 0 {
		return schema.Template{}, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return schema.Template{}, fmt.Errorf("openapi: load document: %w", err)
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return schema.Template{}, fmt.Errorf("openapi: %w: %q", errOperationNotFound, operationID)
	}

	body := requestSchema(op.RequestBody)
	if body == nil || len(body.Properties) == 0 {
		return schema.Template{}, fmt.Errorf("openapi: operation %q has no object request body", operationID)
	}

	fields, err := fieldsFromProperties(body)
	if err != nil {
		return schema.Template{}, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}

	tpl := schema.Template{
		ID:          operationID,
		Name:        strings.TrimSpace(op.Summary),
		Description: strings.TrimSpace(op.Description),
		Version:     "draft",
		Sections: []schema.Section{{
			ID:     "detalles",
			Title:  "Detalles",
			Fields: fields,
		}},
	}
	return tpl, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	content := ref.Value.Content
	for _, mediaType := range []string{"application/json", "multipart/form-data", "application/x-www-form-urlencoded"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldsFromProperties(body *openapi3.Schema) ([]schema.Field, error) {
	required := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]schema.Field, 0, len(names))
	for _, name := range names {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, err := fieldFromProperty(name, ref.Value)
		if err != nil {
			return nil, err
		}
		_, field.Rules.Required = required[name]
		fields = append(fields, field)
	}
	return fields, nil
}

func fieldFromProperty(name string, prop *openapi3.Schema) (schema.Field, error) {
	field := schema.Field{
		ID:       name,
		Label:    labelFromName(name, prop.Title),
		HelpText: strings.TrimSpace(prop.Description),
	}

	switch firstType(prop.Type) {
	case "string":
		field.Kind = kindForString(prop)
		if len(prop.Enum) > 0 {
			field.Options = optionsFromEnum(prop.Enum)
		}
		if prop.Pattern != "" {
			field.Rules.Pattern = prop.Pattern
		}
		if prop.MinLength > 0 {
			field.Rules.MinLength = int(prop.MinLength)
		}
		if prop.MaxLength != nil {
			field.Rules.MaxLength = int(*prop.MaxLength)
		}
	case "integer", "number":
		field.Kind = schema.KindNumber
		if prop.Min != nil {
			min := *prop.Min
			field.Rules.Min = &min
		}
		if prop.Max != nil {
			max := *prop.Max
			field.Rules.Max = &max
		}
	case "boolean":
		field.Kind = schema.KindRadio
		field.Options = []schema.Option{
			{Value: "true", Label: "Sí"},
			{Value: "false", Label: "No"},
		}
	case "array":
		items := itemsSchema(prop)
		switch {
		case items != nil && len(items.Enum) > 0:
			field.Kind = schema.KindCheckboxSet
			field.Options = optionsFromEnum(items.Enum)
		case items != nil && items.Format == "binary":
			field.Kind = schema.KindMultiFile
		default:
			return schema.Field{}, fmt.Errorf("property %q: unsupported array item schema", name)
		}
	default:
		return schema.Field{}, fmt.Errorf("property %q: unsupported type", name)
	}
	return field, nil
}

func kindForString(prop *openapi3.Schema) schema.FieldKind {
	if len(prop.Enum) > 0 {
		return schema.KindSelect
	}
	switch prop.Format {
	case "email":
		return schema.KindEmail
	case "date", "date-time":
		return schema.KindDate
	case "binary":
		return schema.KindFile
	}
	return schema.KindText
}

func itemsSchema(prop *openapi3.Schema) *openapi3.Schema {
	if prop.Items == nil {
		return nil
	}
	return prop.Items.Value
}

func optionsFromEnum(enum []any) []schema.Option {
	out := make([]schema.Option, 0, len(enum))
	for _, value := range enum {
		str := strings.TrimSpace(fmt.Sprint(value))
		if str == "" {
			continue
		}
		out = append(out, schema.Option{Value: str, Label: labelFromName(str, "")})
	}
	return out
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// labelFromName falls back to a title-cased version of the property name when
// the schema declares no explicit title.
func labelFromName(name, title string) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(name))
	if cleaned == "" {
		return name
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}
