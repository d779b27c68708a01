package domain

type IntentType string

const (
	IntentBatchMoveToNurture    IntentType = "batch_move_to_nurture"
	IntentBatchReassignAccounts IntentType = "batch_reassign_accounts"
	IntentMoveToNurture         IntentType = "move_to_nurture"
	IntentReassignAccount       IntentType = "reassign_account"
	IntentCreateOpportunity     IntentType = "create_opportunity"
	IntentAccountLookup         IntentType = "account_lookup"
	IntentDealHistory           IntentType = "deal_history"
	IntentOwnerPipeline         IntentType = "owner_pipeline"
	IntentStageFilter           IntentType = "stage_filter"
	IntentTimeframeFilter       IntentType = "timeframe_filter"
	IntentAmountFilter          IntentType = "amount_filter"
	IntentPipelineSummary       IntentType = "pipeline_summary"
	IntentHelp                  IntentType = "help"
	IntentPaginationNext        IntentType = "pagination_next"
	IntentUnknown               IntentType = "unknown"
)

func (i IntentType) String() string {
	return string(i)
}

// Confidence bands for resolved intents. Exact multi-token triggers score the
// highest; keyword heuristics and context-synthesized results sit below them.
const (
	ConfidenceExact     = 0.95
	ConfidenceKeyword   = 0.7
	ConfidenceContext   = 0.6
	ConfidenceHeuristic = 0.5
	ConfidenceNone      = 0.0

	// MissingEntityPenalty is subtracted once when a required entity could not
	// be extracted. The result is clamped at ConfidenceFloor.
	MissingEntityPenalty = 0.2
	ConfidenceFloor      = 0.1
)

// ResolvedIntent is the output contract of the resolution engine. It is always
// produced, never an error: unrecognized input resolves to IntentUnknown.
type ResolvedIntent struct {
	Intent          IntentType `json:"intent"`
	Entities        Entities   `json:"entities"`
	Confidence      float64    `json:"confidence"`
	OriginalMessage string     `json:"originalMessage"`
}

func UnknownIntent(message string) *ResolvedIntent {
	return &ResolvedIntent{
		Intent:          IntentUnknown,
		Entities:        Entities{},
		Confidence:      ConfidenceNone,
		OriginalMessage: message,
	}
}

func (r *ResolvedIntent) IsUnknown() bool {
	return r == nil || r.Intent == IntentUnknown
}
