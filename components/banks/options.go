package banks

import "github.com/goliatone/go-formflow/pkg/schema"

// SelectOptions converts catalog entries into the option shape bank-select
// fields consume: the ABM code is the stored value, the bank name the label.
func SelectOptions(banks []Bank) []schema.Option {
	if len(banks) == 0 {
		return nil
	}
	out := make([]schema.Option, 0, len(banks))
	for _, bank := range banks {
		out = append(out, schema.Option{Value: bank.Code, Label: bank.Name})
	}
	return out
}

// DefaultOptions returns the embedded catalog as select options.
func DefaultOptions() ([]schema.Option, error) {
	list, err := DefaultBanks()
	if err != nil {
		return nil, err
	}
	return SelectOptions(list), nil
}
