package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/nlu"
	"github.com/atlasops/salesops-bot-go/internal/nlu/extract"
	"github.com/atlasops/salesops-bot-go/internal/service/crm"
	"go.uber.org/zap"
)

// PipelineCommand serves every filtered opportunity view: the bare summary,
// per-owner pipelines, and stage, timeframe and amount filters.
type PipelineCommand struct {
	deps *Dependencies
}

func NewPipelineCommand(deps *Dependencies) *PipelineCommand {
	return &PipelineCommand{deps: deps}
}

func (c *PipelineCommand) Name() string {
	return "pipeline"
}

func (c *PipelineCommand) Description() string {
	return "Pipeline summaries and filtered opportunity views"
}

func (c *PipelineCommand) Execute(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error {
	if err := c.deps.validate(); err != nil {
		return err
	}

	filters := pipelineFiltersFromEntities(resolved.Entities)
	filters.OpenOnly = true

	return runPipelineQuery(ctx, c.deps, chatCtx, resolved.Intent, nlu.BuildFilters(resolved),
		filters, constants.PaginationConfig.ItemsPerPage, 0)
}

// runPipelineQuery executes one page of a pipeline view and records the
// position so "next" and "show all" can continue it. Shared with the
// pagination handler.
func runPipelineQuery(
	ctx context.Context,
	deps *Dependencies,
	chatCtx *domain.ChatContext,
	intent domain.IntentType,
	filterMap map[string]any,
	filters crm.PipelineFilters,
	limit, offset int,
) error {
	// One extra row tells us whether another page exists.
	filters.Limit = limit + 1
	filters.Offset = offset

	opportunities, err := deps.CRM.QueryOpportunities(ctx, filters)
	if err != nil {
		deps.Logger.Error("Pipeline query failed",
			zap.String("intent", intent.String()),
			zap.Error(err),
		)
		return deps.SendMessage(ctx, chatCtx, deps.Formatter.FormatError("Couldn't reach the CRM. Try again in a moment."))
	}

	hasMore := len(opportunities) > limit
	if hasMore {
		opportunities = opportunities[:limit]
	}

	message := deps.Formatter.FormatPipeline(pipelineTitle(filters), opportunities, hasMore)
	if err := deps.SendMessage(ctx, chatCtx, message); err != nil {
		return err
	}

	if deps.Store != nil {
		filterMap["offset"] = offset + len(opportunities)
		convCtx := &domain.ConversationContext{
			LastIntent:  intent,
			LastFilters: filterMap,
			Timestamp:   time.Now(),
		}
		if err := deps.Store.Set(ctx, chatCtx.UserID, chatCtx.ChannelID, convCtx); err != nil {
			deps.Logger.Warn("Failed to record pagination position", zap.Error(err))
		}
	}

	return nil
}

func pipelineFiltersFromEntities(entities domain.Entities) crm.PipelineFilters {
	var filters crm.PipelineFilters

	if entities.Owner != nil {
		filters.Owner = entities.Owner.DisplayName
	}
	if entities.Stages != nil {
		filters.Stages = entities.Stages.Stages
	}
	if entities.Timeframe != nil {
		filters.Timeframe = entities.Timeframe
	}
	if entities.Amount != nil {
		filters.MinAmount = entities.Amount.Value
	}

	return filters
}

// pipelineFiltersFromMap rebuilds query filters from a recorded conversation
// context. Timeframe labels are re-anchored at the current clock, so "this
// week" paged across a week boundary follows the new week.
func pipelineFiltersFromMap(filterMap map[string]any, now time.Time) crm.PipelineFilters {
	var filters crm.PipelineFilters

	if owner, ok := filterMap["owner"].(string); ok {
		filters.Owner = owner
	}
	switch stages := filterMap["stages"].(type) {
	case []string:
		filters.Stages = stages
	case []any:
		for _, s := range stages {
			if label, ok := s.(string); ok {
				filters.Stages = append(filters.Stages, label)
			}
		}
	}
	if label, ok := filterMap["timeframe"].(string); ok && label != "" {
		filters.Timeframe = extract.Timeframe(label, nil, now)
	}
	switch amount := filterMap["min_amount"].(type) {
	case float64:
		filters.MinAmount = amount
	case int:
		filters.MinAmount = float64(amount)
	}

	return filters
}

func recordedOffset(filterMap map[string]any) int {
	switch offset := filterMap["offset"].(type) {
	case int:
		return offset
	case float64:
		// JSON round-trips through the Redis store decode numbers as float64
		return int(offset)
	}
	return 0
}

func pipelineTitle(filters crm.PipelineFilters) string {
	var parts []string

	if filters.Owner != "" {
		parts = append(parts, fmt.Sprintf("%s's pipeline", filters.Owner))
	}
	if len(filters.Stages) > 0 {
		parts = append(parts, fmt.Sprintf("%s deals", strings.Join(filters.Stages, " / ")))
	}
	if filters.Timeframe != nil && filters.Timeframe.Label != "" {
		parts = append(parts, fmt.Sprintf("closing %s", filters.Timeframe.Label))
	}
	if filters.MinAmount > 0 {
		parts = append(parts, fmt.Sprintf("over $%.0f", filters.MinAmount))
	}

	if len(parts) == 0 {
		return "Pipeline"
	}
	return strings.Join(parts, ", ")
}
