package extract

import (
	"regexp"
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/matcher"
)

var accountListSeparator = regexp.MustCompile(`(?i)\s*(?:,|\band\b|&)\s*`)

// Accounts splits a captured account span into individual names. Each entry
// keeps the raw user text next to its normalized form; normalization never
// overwrites the original, since CRM lookups may need either. A trailing
// corporate word inside a name survives intact ("Eudia Testing Account" is one
// token, not truncated at "Account").
func Accounts(captures map[string]string) *domain.AccountList {
	span, ok := captures[catalog.SlotAccountList]
	if !ok {
		span, ok = captures[catalog.SlotAccount]
	}
	if !ok || strings.TrimSpace(span) == "" {
		return nil
	}

	parts := accountListSeparator.Split(span, -1)
	accounts := make([]domain.AccountName, 0, len(parts))
	for _, part := range parts {
		raw := strings.TrimSpace(strings.Trim(strings.TrimSpace(part), ",.:;"))
		if raw == "" {
			continue
		}
		accounts = append(accounts, domain.AccountName{
			Raw:        raw,
			Normalized: matcher.NormalizeName(matcher.ExpandAlias(raw)),
		})
	}

	if len(accounts) == 0 {
		return nil
	}
	return &domain.AccountList{Accounts: accounts}
}
