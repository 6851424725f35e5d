package rules

import (
	"regexp"

	"github.com/tourops/backoffice/pkg/parse"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// RenderTemplate substitutes every {token} with the matching event
// attribute, string-coerced. A token with no matching key stays verbatim,
// which makes rule-authoring mistakes visible in the delivered text
// instead of silently disappearing.
func RenderTemplate(tpl string, data map[string]interface{}) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(token string) string {
		key := token[1 : len(token)-1]
		v, ok := data[key]
		if !ok || v == nil {
			return token
		}
		return parse.ParseString(v)
	})
}
