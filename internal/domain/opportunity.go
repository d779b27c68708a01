package domain

import "time"

// Canonical pipeline stage labels. These strings pass through verbatim to the
// CRM mutation layer.
const (
	StageProspecting = "Prospecting"
	StageDiscovery   = "Discovery"
	StageSQO         = "SQO"
	StageProposal    = "Proposal"
	StageNegotiation = "Negotiation"
	StageClosedWon   = "Closed Won"
	StageClosedLost  = "Closed Lost"
	StageNurture     = "Nurture"
)

type Opportunity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AccountID   string    `json:"accountId"`
	AccountName string    `json:"accountName"`
	StageName   string    `json:"stageName"`
	Owner       string    `json:"owner"`
	Amount      float64   `json:"amount"`
	CloseDate   time.Time `json:"closeDate"`
}

func (o *Opportunity) IsClosed() bool {
	return o != nil && (o.StageName == StageClosedWon || o.StageName == StageClosedLost)
}
