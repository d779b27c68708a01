package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/domain"
)

var amountPattern = regexp.MustCompile(`(?i)\$\s*([\d,]+(?:\.\d+)?)\s*([kmb])?\b`)
var bareAmountPattern = regexp.MustCompile(`(?i)^([\d,]+(?:\.\d+)?)\s*([kmb])?$`)

// Amount parses shorthand monetary expressions ("$500k", "$2.5M",
// "$1,200,000") into a canonical value plus currency.
func Amount(message string, captures map[string]string) *domain.Amount {
	if capture, ok := captures[catalog.SlotAmount]; ok {
		trimmed := strings.TrimSpace(capture)
		if m := amountPattern.FindStringSubmatch(trimmed); m != nil {
			return buildAmount(trimmed, m[1], m[2])
		}
		if m := bareAmountPattern.FindStringSubmatch(strings.TrimPrefix(trimmed, "$")); m != nil {
			return buildAmount(trimmed, m[1], m[2])
		}
	}

	if m := amountPattern.FindStringSubmatch(message); m != nil {
		return buildAmount(m[0], m[1], m[2])
	}

	return nil
}

func buildAmount(raw, digits, suffix string) *domain.Amount {
	value, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return nil
	}

	switch strings.ToLower(suffix) {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	case "b":
		value *= 1_000_000_000
	}

	return &domain.Amount{
		Raw:      strings.TrimSpace(raw),
		Value:    value,
		Currency: "USD",
	}
}
