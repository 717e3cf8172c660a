// Package dispatch holds the per-kind input shaping that turns raw UI edits
// into canonical stored values. Every branch point over field kinds is an
// exhaustive switch so an added kind fails loudly here instead of silently
// storing garbage.
package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/validation"
)

const dateLayout = "2006-01-02"

// Normalizer shapes raw input per field kind. The zero value uses the wall
// clock and the default messages.
type Normalizer struct {
	// Now supplies the floor for date inputs.
	Now func() time.Time
	// Messages formats file-rejection text.
	Messages validation.Messages
}

// Scalar converts a raw edit into the canonical stored string for scalar
// kinds. Checkbox sets, file kinds, and the composite account selector have
// dedicated entry points and are rejected here.
func (n Normalizer) Scalar(field schema.Field, raw string) (string, error) {
	switch field.Kind {
	case schema.KindText, schema.KindEmail, schema.KindPhone, schema.KindTextarea:
		return raw, nil
	case schema.KindNumber:
		return strings.TrimSpace(raw), nil
	case schema.KindCurrency:
		return stripCurrency(raw), nil
	case schema.KindMaskedDigits:
		return digitsOnly(raw), nil
	case schema.KindSelect, schema.KindBankSelect, schema.KindRadio:
		return strings.TrimSpace(raw), nil
	case schema.KindDate:
		return n.normalizeDate(raw), nil
	case schema.KindCheckboxSet:
		return "", fmt.Errorf("dispatch: field %q is a checkbox set; use Toggle", field.ID)
	case schema.KindFile, schema.KindMultiFile:
		return "", fmt.Errorf("dispatch: field %q stores files; use ScreenFile", field.ID)
	case schema.KindAccountSelector:
		return "", fmt.Errorf("dispatch: field %q is an account selector; use Account", field.ID)
	}
	return "", fmt.Errorf("dispatch: field %q has unknown kind %q", field.ID, field.Kind)
}

// Account shapes digit input for a composite account selector under its
// active sub-type: digits only, capped at the sub-type's maximum length.
func Account(sub schema.AccountType, raw string) schema.AccountValue {
	digits := digitsOnly(raw)
	limit := schema.CLABELength
	if sub == schema.AccountNumber {
		limit = schema.AccountMaxLength
	}
	if len(digits) > limit {
		digits = digits[:limit]
	}
	return schema.AccountValue{Type: sub, Digits: digits}
}

// Toggle flips one option in a checkbox-set selection without touching the
// rest, preserving selection order.
func Toggle(current []string, option string) []string {
	out := make([]string, 0, len(current)+1)
	removed := false
	for _, item := range current {
		if item == option {
			removed = true
			continue
		}
		out = append(out, item)
	}
	if !removed {
		out = append(out, option)
	}
	return out
}

// RejectionReason classifies why a file was refused at selection time.
type RejectionReason string

const (
	RejectedSize  RejectionReason = "size"
	RejectedMIME  RejectionReason = "mime"
	RejectedCount RejectionReason = "count"
)

// Rejection is the recoverable error raised when a selected file violates the
// template policy. The file never enters the value store.
type Rejection struct {
	FieldID string
	Reason  RejectionReason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("dispatch: field %q rejected file: %s", r.FieldID, r.Message)
}

// ScreenFile checks a selected file against the template policy before it may
// join the stored array. A nil return means the file is accepted.
func (n Normalizer) ScreenFile(policy schema.FilePolicy, field schema.Field, current []upload.Handle, file upload.Handle) *Rejection {
	msgs := n.Messages.Merged()

	limit := policy.MaxCount
	if field.Kind == schema.KindFile {
		limit = 1
	}
	if limit > 0 && len(current) >= limit {
		return &Rejection{
			FieldID: field.ID,
			Reason:  RejectedCount,
			Message: fmt.Sprintf(msgs.FileCount, limit),
		}
	}
	if policy.MaxSize > 0 && file.Size > policy.MaxSize {
		return &Rejection{
			FieldID: field.ID,
			Reason:  RejectedSize,
			Message: fmt.Sprintf(msgs.FileTooLarge, validation.HumanSize(policy.MaxSize)),
		}
	}
	if !policy.Allows(file.MIME) {
		return &Rejection{
			FieldID: field.ID,
			Reason:  RejectedMIME,
			Message: msgs.FileType,
		}
	}
	return nil
}

// normalizeDate parses and reissues the date in canonical form, clamping
// anything before today up to today. Unparseable input passes through
// verbatim for the validation engine to flag.
func (n Normalizer) normalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return trimmed
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	today := now()
	floor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.Before(floor) {
		return floor.Format(dateLayout)
	}
	return parsed.Format(dateLayout)
}

// stripCurrency removes display formatting (currency symbol, thousands
// separators, spaces) and keeps a plain numeric string.
func stripCurrency(raw string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9', r == '.':
			sb.WriteRune(r)
		case r == '-' && sb.Len() == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func digitsOnly(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
