package command

import (
	"context"
	"fmt"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/util"
	"go.uber.org/zap"
)

// CreateOpportunityCommand opens a new opportunity under an existing account.
type CreateOpportunityCommand struct {
	deps *Dependencies
}

func NewCreateOpportunityCommand(deps *Dependencies) *CreateOpportunityCommand {
	return &CreateOpportunityCommand{deps: deps}
}

func (c *CreateOpportunityCommand) Name() string {
	return "create_opportunity"
}

func (c *CreateOpportunityCommand) Description() string {
	return "Create a new opportunity under an account"
}

func (c *CreateOpportunityCommand) Execute(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error {
	if err := c.deps.validate(); err != nil {
		return err
	}

	name, record := firstAccount(ctx, c.deps, resolved)
	if record == nil {
		return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatAccountNotFound(name))
	}

	var amount float64
	if resolved.Entities.Amount != nil {
		amount = resolved.Entities.Amount.Value
	}

	opportunityName := fmt.Sprintf("%s - New Business %s",
		record.Name, util.NowOps().Format("Jan 2006"))

	if _, err := c.deps.CRM.CreateOpportunity(ctx, record.ID, opportunityName, amount); err != nil {
		c.deps.Logger.Error("Opportunity create failed",
			zap.String("account", record.Name),
			zap.Error(err),
		)
		return c.deps.SendMessage(ctx, chatCtx,
			c.deps.Formatter.FormatError(fmt.Sprintf("Couldn't create an opportunity under %s: %v", record.Name, err)))
	}

	return c.deps.SendMessage(ctx, chatCtx,
		c.deps.Formatter.FormatOpportunityCreated(record.Name, opportunityName, amount))
}
