package command

import (
	"context"
	"fmt"

	"github.com/atlasops/salesops-bot-go/internal/adapter"
	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/service/crm"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// NurtureCommand moves accounts to the Nurture stage, one at a time or as a
// batch. A batch fans out across a bounded worker pool and reports per-account
// outcomes; one failed account never aborts the rest.
type NurtureCommand struct {
	deps *Dependencies
}

func NewNurtureCommand(deps *Dependencies) *NurtureCommand {
	return &NurtureCommand{deps: deps}
}

func (c *NurtureCommand) Name() string {
	return "move_to_nurture"
}

func (c *NurtureCommand) Description() string {
	return "Move accounts to the Nurture stage"
}

func (c *NurtureCommand) Execute(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error {
	if err := c.deps.validate(); err != nil {
		return err
	}

	if resolved.Entities.Accounts == nil || len(resolved.Entities.Accounts.Accounts) == 0 {
		return c.deps.SendMessage(ctx, chatCtx,
			"Which account should I move to nurture? Try `move Boeing to nurture`.")
	}

	names := resolved.Entities.Accounts.Accounts

	if len(names) == 1 {
		return c.moveSingle(ctx, chatCtx, names[0])
	}
	return c.moveBatch(ctx, chatCtx, names)
}

func (c *NurtureCommand) moveSingle(ctx context.Context, chatCtx *domain.ChatContext, name domain.AccountName) error {
	record := c.deps.matchedAccount(ctx, name)
	if record == nil {
		return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatAccountNotFound(name.Raw))
	}

	updated, err := c.moveAccount(ctx, record)
	if err != nil {
		c.deps.Logger.Error("Nurture move failed",
			zap.String("account", record.Name),
			zap.Error(err),
		)
		return c.deps.SendMessage(ctx, chatCtx,
			c.deps.Formatter.FormatError(fmt.Sprintf("Couldn't move %s to Nurture: %v", record.Name, err)))
	}

	return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatMovedToNurture(record.Name, updated))
}

func (c *NurtureCommand) moveBatch(ctx context.Context, chatCtx *domain.ChatContext, names []domain.AccountName) error {
	results := make([]adapter.BatchResult, len(names))

	p := pool.New().WithMaxGoroutines(constants.BatchConfig.Concurrency)
	for i, name := range names {
		p.Go(func() {
			record := c.deps.matchedAccount(ctx, name)
			if record == nil {
				results[i] = adapter.BatchResult{Account: name.Raw, Err: fmt.Errorf("no matching account")}
				return
			}

			if _, err := c.moveAccount(ctx, record); err != nil {
				results[i] = adapter.BatchResult{Account: record.Name, Err: err}
				return
			}
			results[i] = adapter.BatchResult{Account: record.Name}
		})
	}
	p.Wait()

	c.deps.Logger.Info("Batch nurture move finished",
		zap.Int("accounts", len(names)),
	)

	return c.deps.SendMessage(ctx, chatCtx,
		c.deps.Formatter.FormatBatchResult("Moved to Nurture", results))
}

// moveAccount moves every open opportunity under the account to Nurture and
// returns how many were updated.
func (c *NurtureCommand) moveAccount(ctx context.Context, record *domain.AccountRecord) (int, error) {
	opportunities, err := c.deps.CRM.QueryOpportunities(ctx, crm.PipelineFilters{
		AccountID: record.ID,
		OpenOnly:  true,
	})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, opp := range opportunities {
		if opp.StageName == domain.StageNurture {
			continue
		}
		if err := c.deps.CRM.UpdateOpportunityStage(ctx, opp.ID, domain.StageNurture); err != nil {
			return updated, err
		}
		updated++
	}

	return updated, nil
}
