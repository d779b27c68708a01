package command

import (
	"context"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"go.uber.org/zap"
)

// PaginationCommand continues the sender's previous pipeline query: "next",
// "show next 10", "show all".
type PaginationCommand struct {
	deps *Dependencies
}

func NewPaginationCommand(deps *Dependencies) *PaginationCommand {
	return &PaginationCommand{deps: deps}
}

func (c *PaginationCommand) Name() string {
	return "pagination"
}

func (c *PaginationCommand) Description() string {
	return "Page through the previous pipeline query"
}

func (c *PaginationCommand) Execute(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error {
	if err := c.deps.validate(); err != nil {
		return err
	}

	convCtx := c.loadContext(ctx, chatCtx)
	if convCtx == nil {
		return c.deps.SendMessage(ctx, chatCtx,
			"Nothing to page through. Run a pipeline query first.")
	}

	filters := pipelineFiltersFromMap(convCtx.LastFilters, time.Now())
	filters.OpenOnly = true

	limit := constants.PaginationConfig.ItemsPerPage
	offset := recordedOffset(convCtx.LastFilters)

	if action := resolved.Entities.Pagination; action != nil {
		if action.Action == domain.PaginationShowAll {
			limit = constants.PaginationConfig.MaxShowAll
			offset = 0
		} else if action.Count > 0 {
			limit = action.Count
		}
	}

	return runPipelineQuery(ctx, c.deps, chatCtx, convCtx.LastIntent, convCtx.LastFilters,
		filters, limit, offset)
}

func (c *PaginationCommand) loadContext(ctx context.Context, chatCtx *domain.ChatContext) *domain.ConversationContext {
	if c.deps.Store == nil {
		return nil
	}

	convCtx, err := c.deps.Store.Get(ctx, chatCtx.UserID, chatCtx.ChannelID)
	if err != nil {
		c.deps.Logger.Warn("Failed to load conversation context", zap.Error(err))
		return nil
	}
	if convCtx == nil || convCtx.Age() >= constants.CacheTTL.ConversationContext {
		return nil
	}
	return convCtx
}
