package matcher

import (
	"strings"
	"unicode"
)

// Corporate suffixes stripped during normalization, checked in order and
// applied iteratively until none match ("ABC Corp Inc LLC" reduces to "abc").
var corporateSuffixes = []string{
	"incorporated",
	"corporation",
	"limited",
	"company",
	"inc",
	"corp",
	"llc",
	"plc",
	"ltd",
	"co",
}

// knownAliases maps lowercase abbreviations to expanded company names.
var knownAliases = map[string]string{
	"ibm":  "international business machines",
	"ge":   "general electric",
	"3m":   "3m company",
	"hp":   "hewlett packard",
	"bofa": "bank of america",
	"gs":   "goldman sachs",
	"ms":   "morgan stanley",
	"jpm":  "jpmorgan chase",
	"amex": "american express",
	"pg":   "procter and gamble",
	"att":  "at&t",
	"vz":   "verizon",
}

// NormalizeName lowercases, strips punctuation, drops a leading "the" and
// removes corporate suffixes iteratively. Internal words survive: "Ford Motor
// Company" normalizes to "ford motor", not "ford".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '&':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune(' ')
		}
	}
	name = strings.Join(strings.Fields(b.String()), " ")

	for {
		stripped := strings.TrimPrefix(name, "the ")

		for _, suffix := range corporateSuffixes {
			if strings.HasSuffix(stripped, " "+suffix) {
				stripped = strings.TrimSpace(strings.TrimSuffix(stripped, " "+suffix))
			}
		}

		if stripped == name {
			return name
		}
		name = stripped
	}
}

// ExpandAlias returns the known expansion for an abbreviation, or the token
// unchanged when no entry exists. Lookup keys are lowercase.
func ExpandAlias(token string) string {
	if expanded, ok := knownAliases[strings.ToLower(strings.TrimSpace(token))]; ok {
		return expanded
	}
	return token
}

// SimilarityScore is a containment-then-edit-distance cascade: 1.0 for a
// case-insensitive exact match, 0.9 when one normalized name contains the
// other, otherwise a normalized Levenshtein score in [0, 1).
func SimilarityScore(a, b string) float64 {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return 1.0
	}

	normA := NormalizeName(a)
	normB := NormalizeName(b)
	if normA == normB && normA != "" {
		return 1.0
	}

	if normA != "" && normB != "" &&
		(strings.Contains(normA, normB) || strings.Contains(normB, normA)) {
		return 0.9
	}

	maxLen := len([]rune(normA))
	if l := len([]rune(normB)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0.0
	}

	distance := LevenshteinDistance(normA, normB)
	return 1.0 - float64(distance)/float64(maxLen)
}

// LevenshteinDistance is the classic dynamic-programming edit distance over
// whole strings, computed rune-wise.
func LevenshteinDistance(a, b string) int {
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
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
