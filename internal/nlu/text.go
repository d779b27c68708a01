package nlu

import (
	"regexp"
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/constants"
)

var controlCharsPattern = regexp.MustCompile(`[\x00-\x1F\x7F]`)
var whitespacePattern = regexp.MustCompile(`\s+`)

func sanitizeInput(input string) string {
	withoutControl := controlCharsPattern.ReplaceAllString(input, " ")
	normalized := whitespacePattern.ReplaceAllString(withoutControl, " ")
	trimmed := strings.TrimSpace(normalized)

	if trimmed == "" {
		return ""
	}

	if runes := []rune(trimmed); len(runes) > constants.InputLimits.MaxQueryLength {
		return string(runes[:constants.InputLimits.MaxQueryLength])
	}

	return trimmed
}

// Pure paging words and possessive-pronoun follow-ups. These carry no intent
// of their own; only prior context can interpret them.
var deicticPhrases = map[string]bool{
	"next":           true,
	"more":           true,
	"show more":      true,
	"show all":       true,
	"their pipeline": true,
	"their deals":    true,
	"them":           true,
	"those":          true,
	"same again":     true,
}

var deicticNextPattern = regexp.MustCompile(`^(?:show\s+)?next(?:\s+\d+)?(?:\s+page)?$`)

func isDeictic(normalized string) bool {
	if deicticPhrases[normalized] {
		return true
	}
	return deicticNextPattern.MatchString(normalized)
}

func isPossessiveFollowUp(normalized string) bool {
	return strings.HasPrefix(normalized, "their ") ||
		normalized == "them" || normalized == "those" || normalized == "same again"
}
