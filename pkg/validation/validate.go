// Package validation implements the pure rule engine that maps a template,
// the visible field set, and the value store to per-field error messages.
//
// It neither mutates the store nor performs I/O, so it can run eagerly on
// every edit and exhaustively on submit with identical results.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

var (
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
)

const dateLayout = "2006-01-02"

// Options tunes a validation run. The zero value uses the default Spanish
// messages and the wall clock.
type Options struct {
	Messages Messages
	// Now supplies the reference date for the minimum-date check.
	Now func() time.Time
}

// Validate runs every rule over the currently-visible fields and returns the
// error map. Hidden fields never appear in the result. Rule order per field:
// required, pattern/length, numeric bounds, file constraints, with required
// short-circuiting the rest.
func Validate(tpl schema.Template, visible visibility.Set, values map[string]any, opts Options) map[string]string {
	msgs := opts.Messages.Merged()
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	errs := make(map[string]string)
	for _, field := range tpl.Fields() {
		if !visible.Has(field.ID) {
			continue
		}
		if msg := validateField(tpl, field, values, msgs, now); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs
}

// RequiredNow reports whether the field is currently required, folding in the
// cross-field requiredWith rule: an optional field becomes required once its
// configured sibling holds a non-empty value.
func RequiredNow(field schema.Field, values map[string]any) bool {
	if field.Rules.Required {
		return true
	}
	if sibling := field.Rules.RequiredWith; sibling != "" {
		return !Empty(values[sibling])
	}
	return false
}

// Empty reports whether a stored value counts as absent for required checks.
func Empty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []upload.Handle:
		return len(v) == 0
	case schema.AccountValue:
		return strings.TrimSpace(v.Digits) == ""
	default:
		return false
	}
}

func validateField(tpl schema.Template, field schema.Field, values map[string]any, msgs Messages, now func() time.Time) string {
	value := values[field.ID]

	if Empty(value) {
		if RequiredNow(field, values) {
			return msgs.Required
		}
		return ""
	}

	switch field.Kind {
	case schema.KindText, schema.KindPhone, schema.KindTextarea:
		return validateText(field, asString(value), msgs)
	case schema.KindEmail:
		if !emailPattern.MatchString(asString(value)) {
			return msgs.InvalidEmail
		}
		return validateText(field, asString(value), msgs)
	case schema.KindNumber, schema.KindCurrency:
		return validateNumeric(field, asString(value), msgs)
	case schema.KindMaskedDigits:
		return validateDigits(field, asString(value), msgs)
	case schema.KindAccountSelector:
		return validateAccount(value, msgs)
	case schema.KindSelect, schema.KindRadio:
		return validateOption(field, asString(value), msgs)
	case schema.KindBankSelect:
		// Options live in the external bank catalog; nothing to check
		// beyond presence.
		return ""
	case schema.KindCheckboxSet:
		return validateCheckboxSet(field, value, msgs)
	case schema.KindFile, schema.KindMultiFile:
		return validateFiles(tpl.Files, field, value, msgs)
	case schema.KindDate:
		return validateDate(asString(value), msgs, now)
	}
	return ""
}

func validateText(field schema.Field, value string, msgs Messages) string {
	rules := field.Rules
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err == nil && !re.MatchString(value) {
			return msgs.Pattern
		}
	}
	// Length rules count characters, not bytes; accented input must not be
	// over-counted.
	length := utf8.RuneCountInString(value)
	if rules.ExactLength > 0 && length != rules.ExactLength {
		return sprintf(msgs.ExactLength, rules.ExactLength)
	}
	if rules.MinLength > 0 && length < rules.MinLength {
		return sprintf(msgs.MinLength, rules.MinLength)
	}
	if rules.MaxLength > 0 && length > rules.MaxLength {
		return sprintf(msgs.MaxLength, rules.MaxLength)
	}
	return ""
}

func validateNumeric(field schema.Field, value string, msgs Messages) string {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return msgs.InvalidNumber
	}
	rules := field.Rules
	if rules.Min != nil && parsed < *rules.Min {
		return sprintf(msgs.Min, *rules.Min)
	}
	if rules.Max != nil && parsed > *rules.Max {
		return sprintf(msgs.Max, *rules.Max)
	}
	return ""
}

func validateDigits(field schema.Field, value string, msgs Messages) string {
	if !digitsPattern.MatchString(value) {
		return msgs.DigitsOnly
	}
	return validateText(field, value, msgs)
}

func validateAccount(value any, msgs Messages) string {
	account, ok := value.(schema.AccountValue)
	if !ok {
		return msgs.DigitsOnly
	}
	if !digitsPattern.MatchString(account.Digits) {
		switch account.Type {
		case schema.AccountCLABE:
			return msgs.CLABELength
		default:
			return msgs.AccountLength
		}
	}
	switch account.Type {
	case schema.AccountCLABE:
		if len(account.Digits) != schema.CLABELength {
			return msgs.CLABELength
		}
	case schema.AccountNumber:
		if len(account.Digits) < schema.AccountMinLength || len(account.Digits) > schema.AccountMaxLength {
			return msgs.AccountLength
		}
	}
	return ""
}

func validateOption(field schema.Field, value string, msgs Messages) string {
	for _, opt := range field.Options {
		if opt.Value == value {
			return ""
		}
	}
	return msgs.UnknownOption
}

func validateCheckboxSet(field schema.Field, value any, msgs Messages) string {
	selected, ok := value.([]string)
	if !ok {
		return msgs.UnknownOption
	}
	allowed := make(map[string]struct{}, len(field.Options))
	for _, opt := range field.Options {
		allowed[opt.Value] = struct{}{}
	}
	for _, item := range selected {
		if _, ok := allowed[item]; !ok {
			return msgs.UnknownOption
		}
	}
	return ""
}

// validateFiles re-checks the template file policy at validation time even
// though the dispatcher already screens uploads on selection.
func validateFiles(policy schema.FilePolicy, field schema.Field, value any, msgs Messages) string {
	files, ok := value.([]upload.Handle)
	if !ok {
		return msgs.FileType
	}

	limit := policy.MaxCount
	if field.Kind == schema.KindFile {
		limit = 1
	}
	if limit > 0 && len(files) > limit {
		return sprintf(msgs.FileCount, limit)
	}
	for _, file := range files {
		if policy.MaxSize > 0 && file.Size > policy.MaxSize {
			return sprintf(msgs.FileTooLarge, HumanSize(policy.MaxSize))
		}
		if !policy.Allows(file.MIME) {
			return msgs.FileType
		}
	}
	return ""
}

func validateDate(value string, msgs Messages, now func() time.Time) string {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return msgs.InvalidDate
	}
	today := now()
	floor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.Before(floor) {
		return msgs.DateInPast
	}
	return ""
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case schema.AccountValue:
		return v.Digits
	default:
		return ""
	}
}

// sprintf tolerates overridden messages that drop the format verb.
func sprintf(format string, args ...any) string {
	if !strings.Contains(format, "%") {
		return format
	}
	return fmt.Sprintf(format, args...)
}
