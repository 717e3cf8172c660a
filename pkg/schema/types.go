package schema

import "strings"

// FieldKind enumerates the closed set of input kinds a template may declare.
// Dispatch over kinds is always an exhaustive switch so new kinds surface at
// compile time wherever normalization or validation branches on them.
type FieldKind string

const (
	KindText            FieldKind = "text"
	KindEmail           FieldKind = "email"
	KindPhone           FieldKind = "phone"
	KindNumber          FieldKind = "number"
	KindCurrency        FieldKind = "currency"
	KindMaskedDigits    FieldKind = "masked-account-digits"
	KindTextarea        FieldKind = "textarea"
	KindSelect          FieldKind = "single-select"
	KindBankSelect      FieldKind = "bank-select"
	KindRadio           FieldKind = "radio"
	KindCheckboxSet     FieldKind = "checkbox-set"
	KindFile            FieldKind = "file"
	KindMultiFile       FieldKind = "multi-file"
	KindDate            FieldKind = "date"
	KindAccountSelector FieldKind = "composite-account-selector"
)

// Valid reports whether the kind belongs to the supported enumeration.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindEmail, KindPhone, KindNumber, KindCurrency,
		KindMaskedDigits, KindTextarea, KindSelect, KindBankSelect,
		KindRadio, KindCheckboxSet, KindFile, KindMultiFile, KindDate,
		KindAccountSelector:
		return true
	}
	return false
}

// Choice reports whether the kind selects from a declared option list.
// Bank selects draw their options from an external catalog, so they are a
// choice kind without schema-level options.
func (k FieldKind) Choice() bool {
	switch k {
	case KindSelect, KindBankSelect, KindRadio, KindCheckboxSet:
		return true
	}
	return false
}

// File reports whether the kind stores upload handles.
func (k FieldKind) File() bool {
	return k == KindFile || k == KindMultiFile
}

// AccountType identifies the active sub-type of a composite account selector.
type AccountType string

const (
	// AccountCLABE requires exactly 18 digits.
	AccountCLABE AccountType = "clabe"
	// AccountNumber requires 8 to 10 digits.
	AccountNumber AccountType = "account"
)

// CLABE length plus the account-number window for the composite selector.
const (
	CLABELength      = 18
	AccountMinLength = 8
	AccountMaxLength = 10
)

// AccountValue is the stored value shape for composite account selectors:
// the chosen sub-type plus the digits entered under its constraint.
type AccountValue struct {
	Type   AccountType `json:"type"`
	Digits string      `json:"digits"`
}

// String returns the digits so generic value coercion treats an account value
// like any other scalar.
func (v AccountValue) String() string { return v.Digits }

// Option is one selectable entry of a choice field.
type Option struct {
	Value       string `json:"value" yaml:"value"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Rules collects the declarative validation constraints of a field. Zero
// values mean "no constraint".
type Rules struct {
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
	// RequiredWith names a sibling field; once that sibling holds a
	// non-empty value this field becomes required as well.
	RequiredWith string   `json:"requiredWith,omitempty" yaml:"requiredWith,omitempty"`
	Pattern      string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	ExactLength  int      `json:"exactLength,omitempty" yaml:"exactLength,omitempty"`
	MinLength    int      `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength    int      `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min          *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// FilePolicy constrains uploads across the file kinds of a template.
type FilePolicy struct {
	// MaxSize is the per-file byte ceiling. Zero disables the check.
	MaxSize int64 `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
	// MaxCount caps files stored per multi-file field. Zero disables it;
	// single-file kinds always cap at one regardless.
	MaxCount int `json:"maxCount,omitempty" yaml:"maxCount,omitempty"`
	// AllowedMIME whitelists content types. Empty allows everything.
	AllowedMIME []string `json:"allowedMime,omitempty" yaml:"allowedMime,omitempty"`
}

// Allows reports whether the policy accepts the given mime type.
func (p FilePolicy) Allows(mime string) bool {
	if len(p.AllowedMIME) == 0 {
		return true
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, allowed := range p.AllowedMIME {
		if strings.ToLower(strings.TrimSpace(allowed)) == mime {
			return true
		}
	}
	return false
}

// Field is the atomic schema unit: one input with a kind, constraints, and an
// optional visibility condition over earlier fields.
type Field struct {
	ID          string    `json:"id" yaml:"id"`
	Kind        FieldKind `json:"kind" yaml:"kind"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    string    `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Rules       Rules     `json:"rules,omitempty" yaml:"rules,omitempty"`
	// VisibleWhen is an expression over other field values, for example
	// `tipo_cuenta_destino == "tarjeta"`. Empty means always visible. It
	// may only reference fields declared earlier in the template.
	VisibleWhen string `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	// Width is a presentation hint (e.g. "full", "half"); no behavior.
	Width    string `json:"width,omitempty" yaml:"width,omitempty"`
	ReadOnly bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// Section groups fields under a title; ordering is significant.
type Section struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Spacing     string  `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Template is the immutable description of one payment-request form:
// ordered sections of ordered fields plus template-level configuration.
type Template struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Version     string     `json:"version,omitempty" yaml:"version,omitempty"`
	Files       FilePolicy `json:"files,omitempty" yaml:"files,omitempty"`
	Sections    []Section  `json:"sections" yaml:"sections"`
}

// Fields returns every field in declaration order across sections.
func (t Template) Fields() []Field {
	count := 0
	for _, section := range t.Sections {
		count += len(section.Fields)
	}
	out := make([]Field, 0, count)
	for _, section := range t.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// FieldByID looks up a field by id.
func (t Template) FieldByID(id string) (Field, bool) {
	for _, section := range t.Sections {
		for _, field := range section.Fields {
			if field.ID == id {
				return field, true
			}
		}
	}
	return Field{}, false
}
