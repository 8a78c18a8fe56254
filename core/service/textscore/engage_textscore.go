// Package textscore implements the pure text heuristics behind the
// feedback pipeline: edit distance, robotic-phrase detection and the
// human-likeness / natural-language scores.
package textscore

import "strings"

// RoboticPhrases is the fixed denylist of canned-support phrasing. Matched
// case-insensitively as substrings.
var RoboticPhrases = []string{
	"i understand",
	"let me help you",
	"i'd be happy to",
	"is there anything else i can help you with?",
	"as an ai",
	"i apologize for any inconvenience",
	"thank you for reaching out",
}

var casualAcknowledgments = []string{"sure", "got it", "no problem", "absolutely", "of course"}

var contractions = []string{"i'm", "you're", "that's", "it's"}

var formalWords = []string{"understand", "assist", "inquire", "utilize"}

var conversationalFillers = []string{"yeah", "yep", "nope", "hmm", "oh", "well"}

// Levenshtein computes the classic DP edit distance between a and b, with
// unit cost for insertions, deletions and substitutions.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// DetectRoboticPhrases returns every denylisted phrase present in text.
func DetectRoboticPhrases(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, p := range RoboticPhrases {
		if strings.Contains(lower, p) {
			found = append(found, p)
		}
	}
	return found
}

// HumanLikeness scores how human a response reads, 0-1 from a 0.5 base.
func HumanLikeness(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.5

	if containsAny(lower, casualAcknowledgments) {
		score += 0.2
	}
	if strings.ContainsAny(text, "!?") {
		score += 0.1
	}
	if len(text) < 100 {
		score += 0.1
	}
	if containsAny(lower, contractions) {
		score += 0.1
	}
	if len(DetectRoboticPhrases(text)) > 0 {
		score -= 0.3
	}
	if containsAny(lower, formalWords) {
		score -= 0.1
	}
	if len(text) > 200 {
		score -= 0.1
	}

	return clamp01(score)
}

// NaturalLanguage scores sentence rhythm, 0-1 from a 0.5 base: rewarded
// for an 8-20 word average sentence, varied sentence lengths and
// conversational fillers.
func NaturalLanguage(text string) float64 {
	score := 0.5

	sentences := splitSentences(text)
	if len(sentences) > 0 {
		totalWords := 0
		lengths := make(map[int]struct{})
		for _, s := range sentences {
			n := len(strings.Fields(s))
			totalWords += n
			lengths[n] = struct{}{}
		}
		avg := float64(totalWords) / float64(len(sentences))
		if avg >= 8 && avg <= 20 {
			score += 0.2
		}
		if len(lengths) > 2 {
			score += 0.2
		}
	}

	if containsAny(strings.ToLower(text), conversationalFillers) {
		score += 0.1
	}

	return clamp01(score)
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

func containsAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
