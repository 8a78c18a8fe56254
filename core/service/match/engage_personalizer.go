package match

import (
	"strings"

	"engage_server/core/domain"
)

// PersonalizeInput carries the conversation context a rendered response is
// personalized against.
type PersonalizeInput struct {
	Language     string
	CustomerName string
	CompanyName  string
}

// Personalize renders a matched template for one conversation: localized
// variant, binding substitutions (case-insensitive find/replace, then
// prefix, then suffix), then placeholder replacement. Pure function; usage
// counters are bumped by the suggestion service, once per issued
// suggestion.
func Personalize(tpl *domain.SuccessTemplate, binding *domain.TemplateBinding, in PersonalizeInput) string {
	text := tpl.ResponseFor(in.Language)

	for _, sub := range binding.Substitutions {
		text = replaceInsensitive(text, sub.Find, sub.Replace)
	}
	if binding.Prefix != "" {
		text = binding.Prefix + text
	}
	if binding.Suffix != "" {
		text = text + binding.Suffix
	}

	text = strings.ReplaceAll(text, "{customer_name}", in.CustomerName)
	text = strings.ReplaceAll(text, "{company_name}", in.CompanyName)
	return text
}

// replaceInsensitive replaces every case-insensitive occurrence of find,
// preserving the remainder of the text as written.
func replaceInsensitive(text, find, replace string) string {
	if find == "" {
		return text
	}
	lowerText := strings.ToLower(text)
	lowerFind := strings.ToLower(find)

	var b strings.Builder
	for {
		idx := strings.Index(lowerText, lowerFind)
		if idx < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:idx])
		b.WriteString(replace)
		text = text[idx+len(find):]
		lowerText = lowerText[idx+len(lowerFind):]
	}
}
