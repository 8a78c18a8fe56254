package learning

import (
	"fmt"
	"sort"
	"strings"
)

// learnedBlockHeading starts the injected style block. The strip below
// matches the heading structurally (any heading line mentioning it), not
// this exact string, so older block variants are removed too.
const learnedBlockHeading = "## Respond like a human"

// ExtractBigrams counts two-word phrases over lowercase whitespace tokens
// and returns the topN most frequent, ties broken alphabetically for
// deterministic output.
func ExtractBigrams(texts []string, topN int) []string {
	counts := make(map[string]int)
	for _, t := range texts {
		tokens := strings.Fields(strings.ToLower(t))
		for i := 0; i+1 < len(tokens); i++ {
			counts[tokens[i]+" "+tokens[i+1]]++
		}
	}

	phrases := make([]string, 0, len(counts))
	for p := range counts {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}
		return phrases[i] < phrases[j]
	})

	if len(phrases) > topN {
		phrases = phrases[:topN]
	}
	return phrases
}

// StripLearnedBlock removes a previously injected style block: from any
// markdown heading whose text mentions "respond like a human" up to the
// next heading or end of text.
func StripLearnedBlock(instructions string) string {
	lines := strings.Split(instructions, "\n")
	var kept []string
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		isHeading := strings.HasPrefix(trimmed, "#")
		if isHeading && strings.Contains(strings.ToLower(trimmed), "respond like a human") {
			inBlock = true
			continue
		}
		if inBlock && isHeading {
			inBlock = false
		}
		if !inBlock {
			kept = append(kept, line)
		}
	}
	return strings.TrimRight(strings.Join(kept, "\n"), "\n")
}

// BuildLearnedBlock renders the freshly learned style block.
func BuildLearnedBlock(preferred, discouraged []string, targetLength int) string {
	var sb strings.Builder
	sb.WriteString(learnedBlockHeading)
	sb.WriteString("\n")

	if len(preferred) > 0 {
		sb.WriteString("Phrases your agents actually use, prefer these:\n")
		for _, p := range capN(preferred, 10) {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if len(discouraged) > 0 {
		sb.WriteString("Never use these phrases:\n")
		for _, p := range capN(discouraged, 10) {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if targetLength > 0 {
		fmt.Fprintf(&sb, "Aim for replies around %d characters.\n", targetLength)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func capN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
