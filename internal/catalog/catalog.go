package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atlasops/salesops-bot-go/pkg/errors"
)

//go:embed patterns.json
var embeddedCatalog []byte

// EntityRequirement marks whether an extractor's result is required or
// optional for an intent.
type EntityRequirement string

const (
	EntityRequired EntityRequirement = "required"
	EntityOptional EntityRequirement = "optional"
)

// Entity names usable in a pattern entry's "entities" map.
const (
	EntityAccounts   = "accounts"
	EntityOwner      = "owner"
	EntityStages     = "stages"
	EntityTimeframe  = "timeframe"
	EntityAmount     = "amount"
	EntityPagination = "pagination"
)

type patternDef struct {
	Priority    int                          `json:"priority"`
	Description string                       `json:"description"`
	Triggers    []string                     `json:"triggers"`
	Exclusions  []string                     `json:"exclusions"`
	Entities    map[string]EntityRequirement `json:"entities"`
}

// StageTarget accepts either a single canonical label or a list of labels
// ("early stage" expands to a range).
type StageTarget []string

func (st *StageTarget) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*st = StageTarget{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("stage mapping value must be a string or string array")
	}
	*st = StageTarget(many)
	return nil
}

type document struct {
	Patterns     map[string]patternDef  `json:"patterns"`
	StageMapping map[string]StageTarget `json:"stage_mapping"`
}

// Intent is one compiled catalog entry. Immutable after load.
type Intent struct {
	ID          string
	Priority    int
	Description string
	Triggers    []*Trigger
	Exclusions  []*Exclusion
	Entities    map[string]EntityRequirement
}

func (in *Intent) Requires(entity string) bool {
	return in.Entities[entity] == EntityRequired
}

func (in *Intent) Wants(entity string) bool {
	_, ok := in.Entities[entity]
	return ok
}

// Catalog is the compiled, read-only pattern registry.
type Catalog struct {
	intents      []*Intent
	byID         map[string]*Intent
	stageMapping map[string][]string
}

// Load compiles the embedded default catalog.
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// LoadFile compiles a catalog from disk, for deployments that override the
// embedded patterns.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogError(fmt.Sprintf("failed to read catalog file: %v", err), "", "")
	}
	return Parse(data)
}

// Parse validates and compiles catalog JSON. Any structural defect is fatal:
// a partial catalog must never reach the resolver.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewCatalogError(fmt.Sprintf("invalid catalog JSON: %v", err), "", "")
	}

	if len(doc.Patterns) == 0 {
		return nil, errors.NewCatalogError("catalog has no patterns", "", "patterns")
	}

	intents := make([]*Intent, 0, len(doc.Patterns))
	byID := make(map[string]*Intent, len(doc.Patterns))

	for id, def := range doc.Patterns {
		if def.Priority <= 0 {
			return nil, errors.NewCatalogError("pattern is missing a positive priority", id, "priority")
		}
		if strings.TrimSpace(def.Description) == "" {
			return nil, errors.NewCatalogError("pattern is missing a description", id, "description")
		}
		if len(def.Triggers) == 0 {
			return nil, errors.NewCatalogError("pattern has an empty trigger list", id, "triggers")
		}

		intent := &Intent{
			ID:          id,
			Priority:    def.Priority,
			Description: def.Description,
			Entities:    def.Entities,
		}
		if intent.Entities == nil {
			intent.Entities = map[string]EntityRequirement{}
		}

		for _, raw := range def.Triggers {
			trigger, err := compileTrigger(raw)
			if err != nil {
				return nil, errors.NewCatalogError(fmt.Sprintf("bad trigger %q: %v", raw, err), id, "triggers")
			}
			intent.Triggers = append(intent.Triggers, trigger)
		}

		for _, raw := range def.Exclusions {
			exclusion, err := compileExclusion(raw)
			if err != nil {
				return nil, errors.NewCatalogError(fmt.Sprintf("bad exclusion %q: %v", raw, err), id, "exclusions")
			}
			intent.Exclusions = append(intent.Exclusions, exclusion)
		}

		intents = append(intents, intent)
		byID[id] = intent
	}

	// Fixed iteration order: priority descending, id ascending. Declaration
	// order in the JSON never influences resolution.
	sort.Slice(intents, func(i, j int) bool {
		if intents[i].Priority != intents[j].Priority {
			return intents[i].Priority > intents[j].Priority
		}
		return intents[i].ID < intents[j].ID
	})

	stageMapping := make(map[string][]string, len(doc.StageMapping))
	for ref, target := range doc.StageMapping {
		if len(target) == 0 {
			return nil, errors.NewCatalogError("stage mapping entry has no labels", "", ref)
		}
		stageMapping[strings.ToLower(strings.TrimSpace(ref))] = []string(target)
	}

	return &Catalog{
		intents:      intents,
		byID:         byID,
		stageMapping: stageMapping,
	}, nil
}

// Intents returns all intents in priority-descending order.
func (c *Catalog) Intents() []*Intent {
	return c.intents
}

func (c *Catalog) Intent(id string) *Intent {
	return c.byID[id]
}

// StageLabels maps a numeric or nickname stage reference to canonical labels.
// Returns nil when the reference is unknown.
func (c *Catalog) StageLabels(ref string) []string {
	labels, ok := c.stageMapping[strings.ToLower(strings.TrimSpace(ref))]
	if !ok {
		return nil
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// StageReferences returns every known stage reference key.
func (c *Catalog) StageReferences() []string {
	refs := make([]string, 0, len(c.stageMapping))
	for ref := range c.stageMapping {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
