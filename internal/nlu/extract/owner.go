package extract

import (
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/util"
)

// OwnerEntry maps a canonical display name to the aliases a user might type.
type OwnerEntry struct {
	DisplayName string
	Aliases     []string
}

// OwnerVocabulary is the restricted set of known owner names. Lookups are
// case-insensitive; the canonical display form is always returned.
type OwnerVocabulary struct {
	canonical map[string]string
}

func NewOwnerVocabulary(entries []OwnerEntry) *OwnerVocabulary {
	canonical := make(map[string]string)
	for _, entry := range entries {
		canonical[util.Normalize(entry.DisplayName)] = entry.DisplayName

		// first name alone is always an accepted alias
		if first, _, found := strings.Cut(entry.DisplayName, " "); found {
			canonical[util.Normalize(first)] = entry.DisplayName
		}

		for _, alias := range entry.Aliases {
			canonical[util.Normalize(alias)] = entry.DisplayName
		}
	}
	return &OwnerVocabulary{canonical: canonical}
}

func (v *OwnerVocabulary) Lookup(token string) (string, bool) {
	display, ok := v.canonical[util.Normalize(strings.Trim(token, ",.:;'"))]
	return display, ok
}

// Owner resolves the owner capture (or, failing that, any vocabulary name in
// the message) to its canonical display form. Nil when no known owner appears.
func Owner(message string, captures map[string]string, vocab *OwnerVocabulary) *domain.Owner {
	if vocab == nil {
		return nil
	}

	if capture, ok := captures[catalog.SlotOwner]; ok {
		if display, found := vocab.Lookup(capture); found {
			return &domain.Owner{DisplayName: display}
		}
		// capture may include a trailing word the trigger let through
		if first, _, cut := strings.Cut(strings.TrimSpace(capture), " "); cut {
			if display, found := vocab.Lookup(first); found {
				return &domain.Owner{DisplayName: display}
			}
		}
	}

	for _, field := range strings.Fields(message) {
		token := strings.TrimSuffix(strings.Trim(field, ",.:;"), "'s")
		if display, found := vocab.Lookup(token); found {
			return &domain.Owner{DisplayName: display}
		}
	}

	return nil
}
