package command

import (
	"context"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/service/crm"
	"go.uber.org/zap"
)

// DealHistoryCommand lists every opportunity ever opened under an account,
// closed deals included.
type DealHistoryCommand struct {
	deps *Dependencies
}

func NewDealHistoryCommand(deps *Dependencies) *DealHistoryCommand {
	return &DealHistoryCommand{deps: deps}
}

func (c *DealHistoryCommand) Name() string {
	return "deal_history"
}

func (c *DealHistoryCommand) Description() string {
	return "Full deal history for an account"
}

func (c *DealHistoryCommand) Execute(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error {
	if err := c.deps.validate(); err != nil {
		return err
	}

	name, record := firstAccount(ctx, c.deps, resolved)
	if record == nil {
		return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatAccountNotFound(name))
	}

	opportunities, err := c.deps.CRM.QueryOpportunities(ctx, crm.PipelineFilters{
		AccountID: record.ID,
	})
	if err != nil {
		c.deps.Logger.Error("Deal history query failed",
			zap.String("account", record.Name),
			zap.Error(err),
		)
		return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatError("Couldn't reach the CRM. Try again in a moment."))
	}

	return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatDealHistory(record.Name, opportunities))
}
