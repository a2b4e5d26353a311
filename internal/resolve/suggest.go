package resolve

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// maxSuggestions bounds how many near-miss names a resolution error names.
const maxSuggestions = 3

// suggest returns available names close to the unresolved one, nearest
// first, for strict-mode error messages.
func suggest(name string, available []string) []string {
	type scored struct {
		name string
		dist int
	}
	var close []scored
	lower := strings.ToLower(name)
	for _, candidate := range available {
		d := levenshtein.Distance(lower, strings.ToLower(candidate), nil)
		if d <= 2 && d > 0 {
			close = append(close, scored{name: candidate, dist: d})
		}
	}
	sort.Slice(close, func(i, j int) bool {
		if close[i].dist != close[j].dist {
			return close[i].dist < close[j].dist
		}
		return close[i].name < close[j].name
	})
	if len(close) > maxSuggestions {
		close = close[:maxSuggestions]
	}
	out := make([]string, len(close))
	for i, s := range close {
		out[i] = s.name
	}
	return out
}
