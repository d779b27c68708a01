package domain

import "time"

// AccountName keeps the user's raw text alongside the normalized form. The raw
// spelling is never overwritten: downstream CRM lookups may need either.
type AccountName struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	// Matched is set when the fuzzy matcher resolved the name against the
	// account index; nil when no candidate cleared the acceptance floor.
	Matched *AccountRecord `json:"matched,omitempty"`
}

type AccountList struct {
	Accounts []AccountName `json:"accounts"`
}

func (al *AccountList) RawNames() []string {
	if al == nil {
		return nil
	}
	names := make([]string, 0, len(al.Accounts))
	for _, a := range al.Accounts {
		names = append(names, a.Raw)
	}
	return names
}

type Owner struct {
	DisplayName string `json:"displayName"`
}

// StageSet holds one or more canonical stage labels. Labels are contractually
// exact ("Closed Lost", not "Stage 7. Closed(Lost)") since they pass through
// verbatim to CRM mutations.
type StageSet struct {
	Stages []string `json:"stages"`
}

// Timeframe is a half-open [Start, End) range anchored in the operational
// timezone at extraction time.
type Timeframe struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Amount struct {
	Raw      string  `json:"raw"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type PaginationActionType string

const (
	PaginationNextPage PaginationActionType = "next_page"
	PaginationShowAll  PaginationActionType = "show_all"
)

type PaginationAction struct {
	Action PaginationActionType `json:"action"`
	Count  int                  `json:"count,omitempty"`
}

// Entities carries the typed extraction results for a resolved intent. Fields
// not applicable to the intent stay nil.
type Entities struct {
	Accounts   *AccountList      `json:"accounts,omitempty"`
	Owner      *Owner            `json:"owner,omitempty"`
	Stages     *StageSet         `json:"stages,omitempty"`
	Timeframe  *Timeframe        `json:"timeframe,omitempty"`
	Amount     *Amount           `json:"amount,omitempty"`
	Pagination *PaginationAction `json:"pagination,omitempty"`
}

func (e *Entities) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.Accounts == nil && e.Owner == nil && e.Stages == nil &&
		e.Timeframe == nil && e.Amount == nil && e.Pagination == nil
}
