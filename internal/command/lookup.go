package command

import (
	"context"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/service/crm"
	"go.uber.org/zap"
)

// LookupCommand answers "who is the BL on X" style account questions.
type LookupCommand struct {
	deps *Dependencies
}

func NewLookupCommand(deps *Dependencies) *LookupCommand {
	return &LookupCommand{deps: deps}
}

func (c *LookupCommand) Name() string {
	return "account_lookup"
}

func (c *LookupCommand) Description() string {
	return "Account owner and open deal lookup"
}

func (c *LookupCommand) Execute(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error {
	if err := c.deps.validate(); err != nil {
		return err
	}

	name, record := firstAccount(ctx, c.deps, resolved)
	if record == nil {
		return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatAccountNotFound(name))
	}

	opportunities, err := c.deps.CRM.QueryOpportunities(ctx, crm.PipelineFilters{
		AccountID: record.ID,
		OpenOnly:  true,
	})
	if err != nil {
		// The index answers ownership even when the CRM is down.
		c.deps.Logger.Warn("Failed to load account opportunities",
			zap.String("account", record.Name),
			zap.Error(err),
		)
		opportunities = nil
	}

	return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatAccountLookup(record, opportunities))
}

// firstAccount pulls the first extracted account name and its index match.
// The returned name is what the user typed, for not-found messages.
func firstAccount(ctx context.Context, deps *Dependencies, resolved *domain.ResolvedIntent) (string, *domain.AccountRecord) {
	if resolved.Entities.Accounts == nil || len(resolved.Entities.Accounts.Accounts) == 0 {
		return resolved.OriginalMessage, nil
	}

	name := resolved.Entities.Accounts.Accounts[0]
	return name.Raw, deps.matchedAccount(ctx, name)
}
