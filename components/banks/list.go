// Package banks ships the curated bank catalog consumed by bank-select
// fields. The list pairs ABM participant codes with display names and is
// read-only reference data, independent of any template schema.
package banks

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"
	"sync"
)

//go:embed data/abm_banks.txt
var dataFS embed.FS

const defaultListPath = "data/abm_banks.txt"

// Bank is one catalog entry.
type Bank struct {
	Code string
	Name string
}

var (
	defaultOnce  sync.Once
	defaultBanks []Bank
	defaultErr   error
)

// DefaultBanks returns the embedded catalog. The result is a copy; callers
// may reorder or filter it freely.
func DefaultBanks() ([]Bank, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		banks, err := LoadBanks(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultBanks = banks
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]Bank{}, defaultBanks...), nil
}

// LoadBanks parses a "code|name" line catalog. Blank lines and '#' comments
// are skipped; duplicate codes keep the first entry.
func LoadBanks(r io.Reader) ([]Bank, error) {
	if r == nil {
		return nil, fmt.Errorf("banks: missing reader")
	}

	scanner := bufio.NewScanner(r)
	banks := make([]Bank, 0, 64)
	seen := map[string]struct{}{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		code, name, ok := strings.Cut(line, "|")
		if !ok {
			return nil, fmt.Errorf("banks: malformed line %q", line)
		}
		code = strings.TrimSpace(code)
		name = strings.TrimSpace(name)
		if code == "" || name == "" {
			return nil, fmt.Errorf("banks: malformed line %q", line)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		banks = append(banks, Bank{Code: code, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("banks: read catalog: %w", err)
	}
	return banks, nil
}
