package adapter

import (
	"fmt"
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/util"
)

// BatchResult records one account's outcome inside a batch mutation.
type BatchResult struct {
	Account string
	Err     error
}

// ResponseFormatter renders handler results as Slack mrkdwn.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

// FormatPipeline formats one page of an opportunity query.
func (f *ResponseFormatter) FormatPipeline(title string, opportunities []*domain.Opportunity, hasMore bool) string {
	if len(opportunities) == 0 {
		return fmt.Sprintf("No open opportunities found for *%s*.", title)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* (%d shown)\n\n", title, len(opportunities)))

	for _, opp := range opportunities {
		sb.WriteString(f.formatOpportunityLine(opp))
		sb.WriteString("\n")
	}

	if hasMore {
		sb.WriteString("\n_Say \"next\" for more, or \"show all\"._")
	}

	return sb.String()
}

func (f *ResponseFormatter) formatOpportunityLine(opp *domain.Opportunity) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("• *%s* — %s", opp.AccountName, util.TruncateString(opp.Name, 60)))
	sb.WriteString(fmt.Sprintf("\n   %s", opp.StageName))
	if opp.Amount > 0 {
		sb.WriteString(fmt.Sprintf(" · %s", formatAmount(opp.Amount)))
	}
	if opp.Owner != "" {
		sb.WriteString(fmt.Sprintf(" · %s", opp.Owner))
	}
	if !opp.CloseDate.IsZero() {
		sb.WriteString(fmt.Sprintf(" · closes %s", opp.CloseDate.Format("Jan 2, 2006")))
	}
	return sb.String()
}

// FormatAccountLookup formats a single account card with its open deals.
func (f *ResponseFormatter) FormatAccountLookup(record *domain.AccountRecord, opportunities []*domain.Opportunity) string {
	if record == nil {
		return "I couldn't find that account. Try the full account name as it appears in the CRM."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n", record.Name))
	sb.WriteString(fmt.Sprintf("Owner: %s\n", valueOrDash(record.Owner)))
	if record.Stage != "" {
		sb.WriteString(fmt.Sprintf("Stage: %s\n", record.Stage))
	}

	open := 0
	for _, opp := range opportunities {
		if !opp.IsClosed() {
			open++
		}
	}
	sb.WriteString(fmt.Sprintf("Open opportunities: %d", open))

	for _, opp := range opportunities {
		if opp.IsClosed() {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("• %s — %s", util.TruncateString(opp.Name, 60), opp.StageName))
		if opp.Amount > 0 {
			sb.WriteString(fmt.Sprintf(" (%s)", formatAmount(opp.Amount)))
		}
	}

	return sb.String()
}

// FormatDealHistory formats the full opportunity history for an account,
// closed deals included.
func (f *ResponseFormatter) FormatDealHistory(accountName string, opportunities []*domain.Opportunity) string {
	if len(opportunities) == 0 {
		return fmt.Sprintf("No deal history found for *%s*.", accountName)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Deal history for %s* (%d deals)\n\n", accountName, len(opportunities)))

	for _, opp := range opportunities {
		marker := "•"
		switch opp.StageName {
		case domain.StageClosedWon:
			marker = "✅"
		case domain.StageClosedLost:
			marker = "❌"
		}

		sb.WriteString(fmt.Sprintf("%s %s — %s", marker, util.TruncateString(opp.Name, 60), opp.StageName))
		if opp.Amount > 0 {
			sb.WriteString(fmt.Sprintf(" (%s)", formatAmount(opp.Amount)))
		}
		if !opp.CloseDate.IsZero() {
			sb.WriteString(fmt.Sprintf(" · %s", opp.CloseDate.Format("Jan 2, 2006")))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatBatchResult summarizes a batch mutation: which accounts succeeded and
// which failed, with the failure reasons.
func (f *ResponseFormatter) FormatBatchResult(action string, results []BatchResult) string {
	var succeeded, failed []BatchResult
	for _, result := range results {
		if result.Err != nil {
			failed = append(failed, result)
		} else {
			succeeded = append(succeeded, result)
		}
	}

	var sb strings.Builder
	if len(succeeded) > 0 {
		sb.WriteString(fmt.Sprintf("✅ %s: %d account(s)\n", action, len(succeeded)))
		for _, result := range succeeded {
			sb.WriteString(fmt.Sprintf("• %s\n", result.Account))
		}
	}

	if len(failed) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("⚠️ Failed: %d account(s)\n", len(failed)))
		for _, result := range failed {
			sb.WriteString(fmt.Sprintf("• %s — %v\n", result.Account, result.Err))
		}
	}

	if sb.Len() == 0 {
		return "Nothing to do."
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatMovedToNurture confirms a single-account nurture move.
func (f *ResponseFormatter) FormatMovedToNurture(accountName string, updated int) string {
	if updated == 0 {
		return fmt.Sprintf("*%s* has no open opportunities to move to Nurture.", accountName)
	}
	return fmt.Sprintf("✅ Moved *%s* to Nurture (%d opportunit%s updated).",
		accountName, updated, pluralY(updated))
}

// FormatReassigned confirms an ownership change.
func (f *ResponseFormatter) FormatReassigned(accountName, newOwner string) string {
	return fmt.Sprintf("✅ Reassigned *%s* to %s.", accountName, newOwner)
}

// FormatOpportunityCreated confirms a new opportunity.
func (f *ResponseFormatter) FormatOpportunityCreated(accountName, opportunityName string, amount float64) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Created opportunity *%s* under *%s*", opportunityName, accountName))
	if amount > 0 {
		sb.WriteString(fmt.Sprintf(" for %s", formatAmount(amount)))
	}
	sb.WriteString(".")
	return sb.String()
}

// FormatAccountNotFound suggests what to try when the fuzzy matcher failed.
func (f *ResponseFormatter) FormatAccountNotFound(name string) string {
	return fmt.Sprintf("I couldn't match *%s* to an account. Try the full name as it appears in the CRM.", name)
}

// FormatUnknown is the fallback for unresolvable messages.
func (f *ResponseFormatter) FormatUnknown() string {
	return "I didn't catch that. Say *help* to see what I can do."
}

// FormatError wraps an operational failure for the channel.
func (f *ResponseFormatter) FormatError(message string) string {
	return fmt.Sprintf("⚠️ %s", message)
}

// FormatHelp lists what the bot understands.
func (f *ResponseFormatter) FormatHelp() string {
	var sb strings.Builder
	sb.WriteString("*What I can do*\n\n")
	sb.WriteString("*Pipeline*\n")
	sb.WriteString("• `show pipeline` — open opportunity summary\n")
	sb.WriteString("• `show Himanshu's pipeline` — one rep's open deals\n")
	sb.WriteString("• `deals in negotiation` / `stage 5 deals` — filter by stage\n")
	sb.WriteString("• `deals closing this month` — filter by timeframe\n")
	sb.WriteString("• `deals over $50k` — filter by amount\n")
	sb.WriteString("• `next` / `show all` — page through results\n\n")
	sb.WriteString("*Accounts*\n")
	sb.WriteString("• `who is the BL on Toshiba` — account lookup\n")
	sb.WriteString("• `deal history for Boeing` — closed and open deals\n\n")
	sb.WriteString("*Updates*\n")
	sb.WriteString("• `move Boeing to nurture`\n")
	sb.WriteString("• `move Boeing, Toshiba and GE to nurture` — batch\n")
	sb.WriteString("• `reassign Boeing to Sarah`\n")
	sb.WriteString("• `create opportunity for Boeing`")
	return sb.String()
}

func formatAmount(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.0fK", amount/1_000)
	default:
		return fmt.Sprintf("$%.0f", amount)
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
