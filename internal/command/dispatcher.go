package command

import (
	"context"

	"github.com/atlasops/salesops-bot-go/internal/domain"
)

// Dispatcher routes a resolved intent to its handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error
}

// intentKeys collapses intent variants onto their shared handlers: batch
// mutations run through the single-account handler, and every pipeline filter
// variant runs through the pipeline handler.
var intentKeys = map[domain.IntentType]string{
	domain.IntentBatchMoveToNurture:    "move_to_nurture",
	domain.IntentBatchReassignAccounts: "reassign_account",
	domain.IntentMoveToNurture:         "move_to_nurture",
	domain.IntentReassignAccount:       "reassign_account",
	domain.IntentCreateOpportunity:     "create_opportunity",
	domain.IntentAccountLookup:         "account_lookup",
	domain.IntentDealHistory:           "deal_history",
	domain.IntentOwnerPipeline:         "pipeline",
	domain.IntentStageFilter:           "pipeline",
	domain.IntentTimeframeFilter:       "pipeline",
	domain.IntentAmountFilter:          "pipeline",
	domain.IntentPipelineSummary:       "pipeline",
	domain.IntentHelp:                  "help",
	domain.IntentPaginationNext:        "pagination",
}

type sequentialDispatcher struct {
	registry *Registry
}

// NewSequentialDispatcher creates a dispatcher that executes resolved intents
// in the order they are received.
func NewSequentialDispatcher(registry *Registry) Dispatcher {
	return &sequentialDispatcher{registry: registry}
}

func (d *sequentialDispatcher) Dispatch(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error {
	if d == nil || d.registry == nil || resolved.IsUnknown() {
		return nil
	}

	key, ok := intentKeys[resolved.Intent]
	if !ok {
		return nil
	}

	return d.registry.Execute(ctx, chatCtx, key, resolved)
}
