package catalog

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// sanitizeMarkup cleans authored display text. Templates are trusted data,
// but help text is occasionally pasted from rich editors; only simple inline
// markup survives.
func sanitizeMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(helpSanitizer().Sanitize(trimmed))
}

func helpSanitizer() *bluemonday.Policy {
	helpPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowElements("b", "strong", "i", "em", "u", "small", "br", "code")
		helpPolicy = policy
	})
	return helpPolicy
}
