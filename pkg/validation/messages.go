package validation

import "fmt"

// Messages holds the user-facing validation strings. Entries with %d/%s/%v
// verbs are format templates. The defaults are the Spanish strings the
// payment dashboard ships with; callers can override any subset.
type Messages struct {
	Required       string
	InvalidEmail   string
	InvalidNumber  string
	InvalidDate    string
	DateInPast     string
	Pattern        string
	DigitsOnly     string
	ExactLength    string // %d
	MinLength      string // %d
	MaxLength      string // %d
	Min            string // %v
	Max            string // %v
	CLABELength    string
	AccountLength  string
	UnknownOption  string
	FileTooLarge   string // %s, humanized size limit
	FileType       string
	FileCount      string // %d
}

// DefaultMessages returns the stock Spanish catalog.
func DefaultMessages() Messages {
	return Messages{
		Required:      "Este campo es obligatorio",
		InvalidEmail:  "Ingresa un correo electrónico válido",
		InvalidNumber: "Ingresa un número válido",
		InvalidDate:   "Ingresa una fecha válida",
		DateInPast:    "La fecha no puede ser anterior a hoy",
		Pattern:       "El formato no es válido",
		DigitsOnly:    "Solo se permiten dígitos",
		ExactLength:   "Debe tener exactamente %d dígitos",
		MinLength:     "Debe tener al menos %d caracteres",
		MaxLength:     "Debe tener como máximo %d caracteres",
		Min:           "El valor mínimo es %v",
		Max:           "El valor máximo es %v",
		CLABELength:   "La CLABE debe tener exactamente 18 dígitos",
		AccountLength: "La cuenta debe tener entre 8 y 10 dígitos",
		UnknownOption: "Selecciona una opción válida",
		FileTooLarge:  "El archivo supera el tamaño máximo de %s",
		FileType:      "Tipo de archivo no permitido",
		FileCount:     "Número máximo de archivos alcanzado (%d)",
	}
}

// Merged returns the receiver with empty entries filled from the defaults so
// partial overrides stay safe. Every consumer of a caller-supplied catalog
// must go through it before formatting.
func (m Messages) Merged() Messages {
	defaults := DefaultMessages()
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&m.Required, defaults.Required)
	fill(&m.InvalidEmail, defaults.InvalidEmail)
	fill(&m.InvalidNumber, defaults.InvalidNumber)
	fill(&m.InvalidDate, defaults.InvalidDate)
	fill(&m.DateInPast, defaults.DateInPast)
	fill(&m.Pattern, defaults.Pattern)
	fill(&m.DigitsOnly, defaults.DigitsOnly)
	fill(&m.ExactLength, defaults.ExactLength)
	fill(&m.MinLength, defaults.MinLength)
	fill(&m.MaxLength, defaults.MaxLength)
	fill(&m.Min, defaults.Min)
	fill(&m.Max, defaults.Max)
	fill(&m.CLABELength, defaults.CLABELength)
	fill(&m.AccountLength, defaults.AccountLength)
	fill(&m.UnknownOption, defaults.UnknownOption)
	fill(&m.FileTooLarge, defaults.FileTooLarge)
	fill(&m.FileType, defaults.FileType)
	fill(&m.FileCount, defaults.FileCount)
	return m
}

// HumanSize renders a byte count the way the file-size messages expect
// ("10 MB", "512 KB").
func HumanSize(bytes int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%g MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%g KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
