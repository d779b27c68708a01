package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/domain"
)

// PipelineFilters narrows an opportunity query. Zero values mean "no filter".
type PipelineFilters struct {
	Owner     string
	AccountID string
	Stages    []string
	Timeframe *domain.Timeframe
	MinAmount float64
	// OpenOnly excludes closed opportunities. Ignored when Stages is set so an
	// explicit "closed won" filter still works.
	OpenOnly bool
	Limit    int
	Offset   int
}

// QueryOpportunities fetches opportunities matching the filters, newest close
// date first.
func (c *Client) QueryOpportunities(ctx context.Context, filters PipelineFilters) ([]*domain.Opportunity, error) {
	records, err := c.Query(ctx, buildOpportunitySOQL(filters))
	if err != nil {
		return nil, err
	}

	opportunities := make([]*domain.Opportunity, 0, len(records))
	for _, record := range records {
		opportunities = append(opportunities, opportunityFromRecord(record))
	}
	return opportunities, nil
}

func buildOpportunitySOQL(filters PipelineFilters) string {
	var where []string

	if filters.Owner != "" {
		where = append(where, fmt.Sprintf("Owner.Name = '%s'", escapeSOQL(filters.Owner)))
	}
	if filters.AccountID != "" {
		where = append(where, fmt.Sprintf("AccountId = '%s'", escapeSOQL(filters.AccountID)))
	}
	if len(filters.Stages) > 0 {
		quoted := make([]string, len(filters.Stages))
		for i, stage := range filters.Stages {
			quoted[i] = "'" + escapeSOQL(stage) + "'"
		}
		where = append(where, fmt.Sprintf("StageName IN (%s)", strings.Join(quoted, ", ")))
	} else if filters.OpenOnly {
		where = append(where, "IsClosed = false")
	}
	if filters.Timeframe != nil {
		where = append(where, fmt.Sprintf("CloseDate >= %s AND CloseDate < %s",
			filters.Timeframe.Start.Format("2006-01-02"),
			filters.Timeframe.End.Format("2006-01-02")))
	}
	if filters.MinAmount > 0 {
		where = append(where, fmt.Sprintf("Amount >= %.0f", filters.MinAmount))
	}

	soql := "SELECT Id, Name, AccountId, Account.Name, StageName, Owner.Name, Amount, CloseDate FROM Opportunity"
	if len(where) > 0 {
		soql += " WHERE " + strings.Join(where, " AND ")
	}
	soql += " ORDER BY CloseDate DESC"
	if filters.Limit > 0 {
		soql += fmt.Sprintf(" LIMIT %d", filters.Limit)
	}
	if filters.Offset > 0 {
		soql += fmt.Sprintf(" OFFSET %d", filters.Offset)
	}
	return soql
}

// UpdateOpportunityStage moves an opportunity to a canonical stage label. The
// label passes through verbatim; IsClosed/IsWon are computed by the CRM and
// never sent.
func (c *Client) UpdateOpportunityStage(ctx context.Context, opportunityID, stage string) error {
	return c.UpdateObject(ctx, "Opportunity", opportunityID, map[string]any{
		"StageName": stage,
	})
}

// UpdateAccountOwner reassigns an account to a new owner by user id.
func (c *Client) UpdateAccountOwner(ctx context.Context, accountID, ownerID string) error {
	return c.UpdateObject(ctx, "Account", accountID, map[string]any{
		"OwnerId": ownerID,
	})
}

// CreateOpportunity opens a new opportunity under an account in the default
// entry stage, closing 90 days out.
func (c *Client) CreateOpportunity(ctx context.Context, accountID, name string, amount float64) (string, error) {
	fields := map[string]any{
		"Name":      name,
		"AccountId": accountID,
		"StageName": domain.StageProspecting,
		"CloseDate": time.Now().AddDate(0, 0, 90).Format("2006-01-02"),
	}
	if amount > 0 {
		fields["Amount"] = amount
	}
	return c.CreateObject(ctx, "Opportunity", fields)
}

func opportunityFromRecord(record map[string]any) *domain.Opportunity {
	opp := &domain.Opportunity{
		ID:        stringField(record, "Id"),
		Name:      stringField(record, "Name"),
		AccountID: stringField(record, "AccountId"),
		StageName: stringField(record, "StageName"),
	}

	if account, ok := record["Account"].(map[string]any); ok {
		opp.AccountName = stringField(account, "Name")
	}
	if owner, ok := record["Owner"].(map[string]any); ok {
		opp.Owner = stringField(owner, "Name")
	}
	if amount, ok := record["Amount"].(float64); ok {
		opp.Amount = amount
	}
	if closeDate := stringField(record, "CloseDate"); closeDate != "" {
		if parsed, err := time.Parse("2006-01-02", closeDate); err == nil {
			opp.CloseDate = parsed
		}
	}

	return opp
}

func stringField(record map[string]any, key string) string {
	if value, ok := record[key].(string); ok {
		return value
	}
	return ""
}

func escapeSOQL(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}
