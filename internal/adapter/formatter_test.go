package adapter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/domain"
)

func TestFormatPipeline(t *testing.T) {
	f := NewResponseFormatter()

	opportunities := []*domain.Opportunity{
		{
			Name:        "Renewal 2026",
			AccountName: "Boeing",
			StageName:   domain.StageNegotiation,
			Owner:       "Sarah Chen",
			Amount:      1_300_000,
			CloseDate:   time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:        "Expansion",
			AccountName: "Toshiba Corporation",
			StageName:   domain.StageDiscovery,
		},
	}

	message := f.FormatPipeline("Pipeline", opportunities, true)
	if !strings.Contains(message, "*Pipeline* (2 shown)") {
		t.Errorf("header missing from %q", message)
	}
	if !strings.Contains(message, "*Boeing* — Renewal 2026") {
		t.Errorf("first line missing from %q", message)
	}
	if !strings.Contains(message, "$1.3M") {
		t.Errorf("amount missing from %q", message)
	}
	if !strings.Contains(message, "closes Sep 30, 2026") {
		t.Errorf("close date missing from %q", message)
	}
	if !strings.Contains(message, `Say "next" for more`) {
		t.Errorf("paging hint missing from %q", message)
	}

	// Zero-value fields leave no trace.
	if strings.Contains(message, "$0") {
		t.Errorf("zero amount rendered in %q", message)
	}

	empty := f.FormatPipeline("Sarah Chen's pipeline", nil, false)
	if !strings.Contains(empty, "No open opportunities found for *Sarah Chen's pipeline*") {
		t.Errorf("got %q", empty)
	}
}

func TestFormatBatchResultPartitions(t *testing.T) {
	f := NewResponseFormatter()

	results := []BatchResult{
		{Account: "Boeing"},
		{Account: "Toshiba Corporation", Err: errors.New("record locked")},
		{Account: "General Electric"},
	}

	message := f.FormatBatchResult("Moved to Nurture", results)
	if !strings.Contains(message, "✅ Moved to Nurture: 2 account(s)") {
		t.Errorf("got %q", message)
	}
	if !strings.Contains(message, "⚠️ Failed: 1 account(s)") {
		t.Errorf("got %q", message)
	}
	if !strings.Contains(message, "Toshiba Corporation — record locked") {
		t.Errorf("failure reason missing from %q", message)
	}

	if got := f.FormatBatchResult("Moved to Nurture", nil); got != "Nothing to do." {
		t.Errorf("empty batch = %q", got)
	}
}

func TestFormatMovedToNurturePluralizes(t *testing.T) {
	f := NewResponseFormatter()

	if got := f.FormatMovedToNurture("Boeing", 1); !strings.Contains(got, "1 opportunity updated") {
		t.Errorf("got %q", got)
	}
	if got := f.FormatMovedToNurture("Boeing", 3); !strings.Contains(got, "3 opportunities updated") {
		t.Errorf("got %q", got)
	}
	if got := f.FormatMovedToNurture("Boeing", 0); !strings.Contains(got, "no open opportunities") {
		t.Errorf("got %q", got)
	}
}

func TestFormatAccountLookupCountsOpenDeals(t *testing.T) {
	f := NewResponseFormatter()

	record := &domain.AccountRecord{Name: "Boeing", Owner: "Sarah Chen"}
	opportunities := []*domain.Opportunity{
		{Name: "Open one", StageName: domain.StageDiscovery, Amount: 40_000},
		{Name: "Won last year", StageName: domain.StageClosedWon},
	}

	message := f.FormatAccountLookup(record, opportunities)
	if !strings.Contains(message, "Owner: Sarah Chen") {
		t.Errorf("got %q", message)
	}
	if !strings.Contains(message, "Open opportunities: 1") {
		t.Errorf("closed deal counted as open in %q", message)
	}
	if strings.Contains(message, "Won last year") {
		t.Errorf("closed deal listed in %q", message)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2_500_000, "$2.5M"},
		{50_000, "$50K"},
		{750, "$750"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
