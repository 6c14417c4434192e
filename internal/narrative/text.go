// internal/narrative/text.go
package narrative

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	markupPattern    = regexp.MustCompile(`<[^>]+>`)
	sentencePattern  = regexp.MustCompile(`[.!?]+`)
	candidatePattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
)

// stripMarkup drops every <...> tag. Entities are left as-is.
func stripMarkup(content string) string {
	return markupPattern.ReplaceAllString(content, "")
}

// candidateTokens returns capitalized words in order. RE2's \b is ASCII-only,
// so a match touching a non-ASCII letter or digit is a fragment and is dropped.
func candidateTokens(text string) []string {
	var tokens []string
	for _, loc := range candidatePattern.FindAllStringIndex(text, -1) {
		before, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
		after, _ := utf8.DecodeRuneInString(text[loc[1]:])
		if isWordRune(before) || isWordRune(after) {
			continue
		}
		tokens = append(tokens, text[loc[0]:loc[1]])
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

// countAll sums the non-overlapping substring counts of every keyword in text.
func countAll(text string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		total += strings.Count(text, kw)
	}
	return total
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// splitSentences splits on runs of terminators and lowercases each piece.
func splitSentences(text string) []string {
	parts := sentencePattern.Split(text, -1)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return parts
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundHalfUp returns round(num/den) with halves rounded up, for num >= 0, den > 0.
func roundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}
