package render

import (
	"regexp"

	"git.home.luguber.info/inful/daybook/internal/metadata"
)

const defaultMarker = "@@"

// placeholderPattern matches marker-delimited keys such as @@Title@@.
func placeholderPattern(marker string) *regexp.Regexp {
	m := regexp.QuoteMeta(marker)
	return regexp.MustCompile(m + `([A-Za-z0-9_\-]+)` + m)
}

var defaultPlaceholders = placeholderPattern(defaultMarker)

// Substitute replaces every @@key@@ in haystack whose key is present in m.
// Unknown keys are left as they are. Replacement values are not rescanned.
func Substitute(m metadata.Map, haystack string) string {
	return substitute(defaultPlaceholders, m, haystack)
}

func substitute(re *regexp.Regexp, m metadata.Map, haystack string) string {
	if len(m) == 0 {
		return haystack
	}
	return re.ReplaceAllStringFunc(haystack, func(token string) string {
		key := re.FindStringSubmatch(token)[1]
		if v, ok := m[key]; ok {
			return v
		}
		return token
	})
}
