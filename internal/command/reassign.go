package command

import (
	"context"
	"fmt"

	"github.com/atlasops/salesops-bot-go/internal/adapter"
	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ReassignCommand changes account ownership, singly or in batch. The target
// owner resolves to a CRM user id once, up front; a bad owner name fails the
// whole command before any account is touched.
type ReassignCommand struct {
	deps *Dependencies
}

func NewReassignCommand(deps *Dependencies) *ReassignCommand {
	return &ReassignCommand{deps: deps}
}

func (c *ReassignCommand) Name() string {
	return "reassign_account"
}

func (c *ReassignCommand) Description() string {
	return "Reassign account ownership"
}

func (c *ReassignCommand) Execute(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error {
	if err := c.deps.validate(); err != nil {
		return err
	}

	if resolved.Entities.Accounts == nil || len(resolved.Entities.Accounts.Accounts) == 0 {
		return c.deps.SendMessage(ctx, chatCtx,
			"Which account should I reassign? Try `reassign Boeing to Sarah`.")
	}
	if resolved.Entities.Owner == nil {
		return c.deps.SendMessage(ctx, chatCtx,
			"Who should own it? Try `reassign Boeing to Sarah`.")
	}

	ownerName := resolved.Entities.Owner.DisplayName
	ownerID, err := c.deps.CRM.FindUserIDByName(ctx, ownerName)
	if err != nil {
		c.deps.Logger.Error("Owner lookup failed",
			zap.String("owner", ownerName),
			zap.Error(err),
		)
		return c.deps.SendMessage(ctx, chatCtx,
			c.deps.Formatter.FormatError(fmt.Sprintf("Couldn't find a CRM user named %s.", ownerName)))
	}

	names := resolved.Entities.Accounts.Accounts

	if len(names) == 1 {
		return c.reassignSingle(ctx, chatCtx, names[0], ownerID, ownerName)
	}
	return c.reassignBatch(ctx, chatCtx, names, ownerID, ownerName)
}

func (c *ReassignCommand) reassignSingle(ctx context.Context, chatCtx *domain.ChatContext, name domain.AccountName, ownerID, ownerName string) error {
	record := c.deps.matchedAccount(ctx, name)
	if record == nil {
		return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatAccountNotFound(name.Raw))
	}

	if err := c.deps.CRM.UpdateAccountOwner(ctx, record.ID, ownerID); err != nil {
		c.deps.Logger.Error("Reassign failed",
			zap.String("account", record.Name),
			zap.String("owner", ownerName),
			zap.Error(err),
		)
		return c.deps.SendMessage(ctx, chatCtx,
			c.deps.Formatter.FormatError(fmt.Sprintf("Couldn't reassign %s: %v", record.Name, err)))
	}

	return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatReassigned(record.Name, ownerName))
}

func (c *ReassignCommand) reassignBatch(ctx context.Context, chatCtx *domain.ChatContext, names []domain.AccountName, ownerID, ownerName string) error {
	results := make([]adapter.BatchResult, len(names))

	p := pool.New().WithMaxGoroutines(constants.BatchConfig.Concurrency)
	for i, name := range names {
		p.Go(func() {
			record := c.deps.matchedAccount(ctx, name)
			if record == nil {
				results[i] = adapter.BatchResult{Account: name.Raw, Err: fmt.Errorf("no matching account")}
				return
			}

			if err := c.deps.CRM.UpdateAccountOwner(ctx, record.ID, ownerID); err != nil {
				results[i] = adapter.BatchResult{Account: record.Name, Err: err}
				return
			}
			results[i] = adapter.BatchResult{Account: record.Name}
		})
	}
	p.Wait()

	c.deps.Logger.Info("Batch reassign finished",
		zap.Int("accounts", len(names)),
		zap.String("owner", ownerName),
	)

	return c.deps.SendMessage(ctx, chatCtx,
		c.deps.Formatter.FormatBatchResult(fmt.Sprintf("Reassigned to %s", ownerName), results))
}
