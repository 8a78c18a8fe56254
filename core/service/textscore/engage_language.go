package textscore

import "strings"

// language marker words, all lowercase. Spanish and Portuguese share some
// vocabulary; Portuguese-only markers are checked first.
var (
	spanishMarkers    = []string{"hola", "gracias", "precio", "cuánto", "cuanto", "quiero", "necesito", "dónde", "está", "usted", "¿", "¡"}
	portugueseMarkers = []string{"olá", "obrigado", "obrigada", "preço", "você", "não", "quanto custa", "gostaria"}
	englishMarkers    = []string{"the", "hello", "price", "how much", "thanks", "please", "want", "need"}
)

// DetectLanguage guesses the customer language from recent message text.
// Returns a two-letter code, defaulting to "en" when nothing matches.
func DetectLanguage(texts []string) string {
	joined := strings.ToLower(strings.Join(texts, " "))
	if joined == "" {
		return "en"
	}

	pt := countMarkers(joined, portugueseMarkers)
	es := countMarkers(joined, spanishMarkers)
	en := countMarkers(joined, englishMarkers)

	switch {
	case pt > es && pt > en:
		return "pt"
	case es > en:
		return "es"
	default:
		return "en"
	}
}

func countMarkers(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(text, m) {
			n++
		}
	}
	return n
}
