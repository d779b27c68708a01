package crm

import (
	"strings"
	"testing"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/domain"
)

func TestBuildOpportunitySOQL(t *testing.T) {
	tests := []struct {
		name    string
		filters PipelineFilters
		want    []string
		wantNot []string
	}{
		{
			name:    "no filters",
			filters: PipelineFilters{},
			want:    []string{"FROM Opportunity ORDER BY CloseDate DESC"},
			wantNot: []string{"WHERE", "LIMIT", "OFFSET"},
		},
		{
			name:    "open only",
			filters: PipelineFilters{OpenOnly: true},
			want:    []string{"WHERE IsClosed = false"},
		},
		{
			name: "explicit stage filter overrides open only",
			filters: PipelineFilters{
				OpenOnly: true,
				Stages:   []string{domain.StageClosedWon},
			},
			want:    []string{"StageName IN ('Closed Won')"},
			wantNot: []string{"IsClosed"},
		},
		{
			name: "owner and amount",
			filters: PipelineFilters{
				Owner:     "Sarah Chen",
				MinAmount: 50_000,
			},
			want: []string{"Owner.Name = 'Sarah Chen'", "Amount >= 50000"},
		},
		{
			name: "timeframe as half-open date range",
			filters: PipelineFilters{
				Timeframe: &domain.Timeframe{
					Label: "this month",
					Start: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
					End:   time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			want: []string{"CloseDate >= 2026-03-01 AND CloseDate < 2026-04-01"},
		},
		{
			name:    "paging",
			filters: PipelineFilters{Limit: 11, Offset: 20},
			want:    []string{"LIMIT 11", "OFFSET 20"},
		},
		{
			name:    "account scope",
			filters: PipelineFilters{AccountID: "0015g00000AbCdE"},
			want:    []string{"AccountId = '0015g00000AbCdE'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			soql := buildOpportunitySOQL(tt.filters)
			for _, fragment := range tt.want {
				if !strings.Contains(soql, fragment) {
					t.Errorf("missing %q in %q", fragment, soql)
				}
			}
			for _, fragment := range tt.wantNot {
				if strings.Contains(soql, fragment) {
					t.Errorf("unexpected %q in %q", fragment, soql)
				}
			}
		})
	}
}

func TestEscapeSOQL(t *testing.T) {
	soql := buildOpportunitySOQL(PipelineFilters{Owner: "O'Brien"})
	if !strings.Contains(soql, `Owner.Name = 'O\'Brien'`) {
		t.Errorf("quote not escaped: %q", soql)
	}

	if got := escapeSOQL(`a\b'c`); got != `a\\b\'c` {
		t.Errorf("escapeSOQL = %q", got)
	}
}

func TestSanitizeUpdateFields(t *testing.T) {
	fields := map[string]any{
		"StageName":        "Nurture",
		"Amount":           50_000.0,
		"Id":               "006xx",
		"IsClosed":         true,
		"isWon":            true,
		"createddate":      "2024-01-01",
		"LastModifiedDate": "2026-01-01",
	}

	sanitized := SanitizeUpdateFields(fields)
	if len(sanitized) != 2 {
		t.Fatalf("sanitized = %v, want only StageName and Amount", sanitized)
	}
	if sanitized["StageName"] != "Nurture" || sanitized["Amount"] != 50_000.0 {
		t.Errorf("writable fields altered: %v", sanitized)
	}

	// Original map is left untouched.
	if len(fields) != 7 {
		t.Errorf("input map mutated: %v", fields)
	}
}

func TestOpportunityFromRecord(t *testing.T) {
	record := map[string]any{
		"Id":        "006xx",
		"Name":      "Renewal 2026",
		"AccountId": "001xx",
		"StageName": "Negotiation",
		"Amount":    250_000.0,
		"CloseDate": "2026-09-30",
		"Account":   map[string]any{"Name": "Boeing"},
		"Owner":     map[string]any{"Name": "Sarah Chen"},
	}

	opp := opportunityFromRecord(record)
	if opp.ID != "006xx" || opp.AccountName != "Boeing" || opp.Owner != "Sarah Chen" {
		t.Errorf("got %+v", opp)
	}
	if opp.Amount != 250_000 {
		t.Errorf("amount = %v", opp.Amount)
	}
	if opp.CloseDate.Format("2006-01-02") != "2026-09-30" {
		t.Errorf("close date = %v", opp.CloseDate)
	}

	// Missing relationship fields degrade to zero values, not panics.
	sparse := opportunityFromRecord(map[string]any{"Id": "006yy"})
	if sparse.AccountName != "" || sparse.Amount != 0 || !sparse.CloseDate.IsZero() {
		t.Errorf("got %+v", sparse)
	}
}
