package nlu

import "github.com/atlasops/salesops-bot-go/internal/catalog"

// candidate is one intent whose trigger matched the message, together with the
// winning trigger's bindings.
type candidate struct {
	intent  *catalog.Intent
	trigger *catalog.Trigger
	match   *catalog.Match
}

// rankBefore is the tie-break policy as an explicit comparator: declared
// priority first, then trigger specificity, then intent id. Catalog
// declaration order never participates.
func rankBefore(a, b *candidate) bool {
	if a.intent.Priority != b.intent.Priority {
		return a.intent.Priority > b.intent.Priority
	}
	if a.match.Specificity != b.match.Specificity {
		return a.match.Specificity > b.match.Specificity
	}
	return a.intent.ID < b.intent.ID
}

// selectBest picks the winning candidate under rankBefore, or nil for an empty
// set.
func selectBest(candidates []*candidate) *candidate {
	var best *candidate
	for _, c := range candidates {
		if best == nil || rankBefore(c, best) {
			best = c
		}
	}
	return best
}
