package banks

import (
	"sort"
	"strings"
)

// Search filters the catalog by a case-insensitive substring over name and
// code, ranking prefix matches first. A limit of zero or below means no cap.
func Search(banks []Bank, query string, limit int) []Bank {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		if limit > 0 && len(banks) > limit {
			return append([]Bank{}, banks[:limit]...)
		}
		return append([]Bank{}, banks...)
	}

	matches := make([]matchedBank, 0, 16)
	for _, bank := range banks {
		name := strings.ToLower(bank.Name)
		if !strings.Contains(name, query) && !strings.HasPrefix(bank.Code, query) {
			continue
		}
		matches = append(matches, matchedBank{
			bank:     bank,
			isPrefix: strings.HasPrefix(name, query) || strings.HasPrefix(bank.Code, query),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].bank.Name < matches[j].bank.Name
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Bank, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.bank)
	}
	return out
}

type matchedBank struct {
	bank     Bank
	isPrefix bool
}
