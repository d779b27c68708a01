package nlu

import (
	"context"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/matcher"
	"github.com/atlasops/salesops-bot-go/internal/nlu/extract"
	"github.com/atlasops/salesops-bot-go/internal/util"
	"github.com/atlasops/salesops-bot-go/pkg/errors"
	"go.uber.org/zap"
)

// Engine resolves free-text messages against the pattern catalog. One call per
// message, no suspension points; the only shared state is the context store
// and the matcher's cache, both concurrency-safe.
type Engine struct {
	catalog *catalog.Catalog
	matcher *matcher.AccountMatcher
	vocab   *extract.OwnerVocabulary
	store   ContextStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewEngine(
	cat *catalog.Catalog,
	accountMatcher *matcher.AccountMatcher,
	vocab *extract.OwnerVocabulary,
	store ContextStore,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		catalog: cat,
		matcher: accountMatcher,
		vocab:   vocab,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// ResolveMessage loads conversation context for the sender, resolves the
// message, and records the outcome for follow-ups.
func (e *Engine) ResolveMessage(ctx context.Context, chatCtx *domain.ChatContext) (*domain.ResolvedIntent, error) {
	convCtx, err := e.store.Get(ctx, chatCtx.UserID, chatCtx.ChannelID)
	if err != nil {
		// A broken store must not take queries down; resolve without context.
		e.logger.Warn("Failed to load conversation context", zap.Error(err))
		convCtx = nil
	}

	resolved, err := e.Resolve(ctx, chatCtx.Message, convCtx)
	if err != nil {
		return nil, err
	}

	e.record(ctx, chatCtx, resolved)
	return resolved, nil
}

// Resolve classifies a message into exactly one intent plus extracted
// entities. User input never produces an error: unrecognized text resolves to
// IntentUnknown. The only error path is a structurally invalid context.
func (e *Engine) Resolve(ctx context.Context, message string, convCtx *domain.ConversationContext) (*domain.ResolvedIntent, error) {
	if err := convCtx.Validate(); err != nil {
		return nil, errors.NewContextError(err.Error())
	}

	original := message
	sanitized := sanitizeInput(message)
	if sanitized == "" {
		return domain.UnknownIntent(original), nil
	}

	candidates := e.generateCandidates(sanitized)
	candidates = e.filterExclusions(candidates, original)

	if best := selectBest(candidates); best != nil {
		return e.buildResolved(ctx, best, original), nil
	}

	// Deictic follow-ups are checked before keyword heuristics so that
	// "their pipeline" reuses prior filters instead of degrading to a bare
	// pipeline summary.
	if resolved := e.contextResolve(sanitized, original, convCtx); resolved != nil {
		return resolved, nil
	}

	if resolved := e.heuristicResolve(ctx, sanitized, original); resolved != nil {
		return resolved, nil
	}

	e.logger.Debug("Unrecognized message", zap.String("message", util.TruncateString(sanitized, 80)))
	return domain.UnknownIntent(original), nil
}

// generateCandidates tests every intent's triggers, keeping the most specific
// match per intent.
func (e *Engine) generateCandidates(sanitized string) []*candidate {
	var candidates []*candidate

	for _, intent := range e.catalog.Intents() {
		var best *candidate
		for _, trigger := range intent.Triggers {
			match, ok := trigger.MatchMessage(sanitized)
			if !ok {
				continue
			}
			if best == nil || match.Specificity > best.match.Specificity {
				best = &candidate{intent: intent, trigger: trigger, match: match}
			}
		}
		if best != nil {
			candidates = append(candidates, best)
		}
	}

	return candidates
}

// filterExclusions drops candidates whose veto phrases appear in the raw
// message. Raw, not sanitized: exclusion anchoring is part of the catalog
// contract and must see exactly what the user typed.
func (e *Engine) filterExclusions(candidates []*candidate, rawMessage string) []*candidate {
	kept := candidates[:0]
	for _, c := range candidates {
		vetoed := false
		for _, exclusion := range c.intent.Exclusions {
			if exclusion.Vetoes(rawMessage) {
				e.logger.Debug("Intent vetoed by exclusion",
					zap.String("intent", c.intent.ID),
					zap.String("exclusion", exclusion.Source),
				)
				vetoed = true
				break
			}
		}
		if !vetoed {
			kept = append(kept, c)
		}
	}
	return kept
}

func (e *Engine) buildResolved(ctx context.Context, best *candidate, original string) *domain.ResolvedIntent {
	confidence := domain.ConfidenceKeyword
	if best.trigger.Literals >= 2 {
		confidence = domain.ConfidenceExact
	}

	entities, missingRequired := e.extractEntities(ctx, best.intent, original, best.match.Captures)
	if missingRequired > 0 {
		// Partial extraction demotes confidence; the caller decides whether to
		// proceed or prompt for the missing piece.
		confidence -= domain.MissingEntityPenalty
		if confidence < domain.ConfidenceFloor {
			confidence = domain.ConfidenceFloor
		}
	}

	e.logger.Info("Resolved intent",
		zap.String("intent", best.intent.ID),
		zap.String("trigger", best.trigger.Source),
		zap.Float64("confidence", confidence),
		zap.Int("missing_required", missingRequired),
	)

	return &domain.ResolvedIntent{
		Intent:          domain.IntentType(best.intent.ID),
		Entities:        entities,
		Confidence:      confidence,
		OriginalMessage: original,
	}
}

// extractEntities runs the extractors the intent declares, in the fixed order
// accounts, owner, stage, timeframe, amount, pagination. Extractors not
// applicable to the intent never run.
func (e *Engine) extractEntities(ctx context.Context, intent *catalog.Intent, message string, captures map[string]string) (domain.Entities, int) {
	var entities domain.Entities
	missingRequired := 0

	tally := func(name string, present bool) {
		if !present && intent.Requires(name) {
			missingRequired++
		}
	}

	if intent.Wants(catalog.EntityAccounts) {
		entities.Accounts = extract.Accounts(captures)
		e.attachMatches(ctx, entities.Accounts)
		tally(catalog.EntityAccounts, entities.Accounts != nil)
	}
	if intent.Wants(catalog.EntityOwner) {
		entities.Owner = extract.Owner(message, captures, e.vocab)
		tally(catalog.EntityOwner, entities.Owner != nil)
	}
	if intent.Wants(catalog.EntityStages) {
		entities.Stages = extract.Stages(message, captures, e.catalog.StageLabels)
		tally(catalog.EntityStages, entities.Stages != nil)
	}
	if intent.Wants(catalog.EntityTimeframe) {
		entities.Timeframe = extract.Timeframe(message, captures, e.now())
		tally(catalog.EntityTimeframe, entities.Timeframe != nil)
	}
	if intent.Wants(catalog.EntityAmount) {
		entities.Amount = extract.Amount(message, captures)
		tally(catalog.EntityAmount, entities.Amount != nil)
	}
	if intent.Wants(catalog.EntityPagination) {
		entities.Pagination = extract.Pagination(message, captures)
		tally(catalog.EntityPagination, entities.Pagination != nil)
	}

	return entities, missingRequired
}

// attachMatches resolves each raw account name through the fuzzy matcher. Raw
// and normalized forms stay as extracted; only the Matched field is added.
func (e *Engine) attachMatches(ctx context.Context, list *domain.AccountList) {
	if list == nil || e.matcher == nil {
		return
	}
	for i := range list.Accounts {
		list.Accounts[i].Matched = e.matcher.FindBestMatch(ctx, list.Accounts[i].Raw)
	}
}

// contextResolve interprets short, purely deictic messages against the last
// resolved query for this sender.
func (e *Engine) contextResolve(sanitized, original string, convCtx *domain.ConversationContext) *domain.ResolvedIntent {
	norm := util.Normalize(sanitized)
	if !isDeictic(norm) {
		return nil
	}
	if convCtx == nil || convCtx.Age() >= constants.CacheTTL.ConversationContext {
		return nil
	}

	if isPossessiveFollowUp(norm) {
		entities := entitiesFromFilters(convCtx.LastFilters)
		e.logger.Info("Context follow-up",
			zap.String("last_intent", convCtx.LastIntent.String()),
			zap.String("message", norm),
		)
		return &domain.ResolvedIntent{
			Intent:          convCtx.LastIntent,
			Entities:        entities,
			Confidence:      domain.ConfidenceContext,
			OriginalMessage: original,
		}
	}

	pagination := extract.Pagination(sanitized, nil)
	if pagination == nil {
		pagination = &domain.PaginationAction{Action: domain.PaginationNextPage}
	}

	return &domain.ResolvedIntent{
		Intent:          domain.IntentPaginationNext,
		Entities:        domain.Entities{Pagination: pagination},
		Confidence:      domain.ConfidenceContext,
		OriginalMessage: original,
	}
}

// Single-keyword heuristics, tried only after the catalog produced nothing.
var keywordHeuristics = []struct {
	keyword string
	intent  domain.IntentType
}{
	{"pipeline", domain.IntentPipelineSummary},
	{"deals", domain.IntentPipelineSummary},
	{"opportunities", domain.IntentPipelineSummary},
	{"help", domain.IntentHelp},
}

func (e *Engine) heuristicResolve(ctx context.Context, sanitized, original string) *domain.ResolvedIntent {
	norm := util.Normalize(sanitized)
	fields := map[string]bool{}
	for _, f := range splitWords(catalog.CorrectKnownMisspellings(norm)) {
		fields[f] = true
	}

	// A bare stage reference ("sqo", "late stage") reads as a stage filter.
	if stages := extract.Stages(sanitized, nil, e.catalog.StageLabels); stages != nil {
		return e.heuristicResult(ctx, domain.IntentStageFilter, original, domain.Entities{Stages: stages})
	}

	for _, h := range keywordHeuristics {
		if fields[h.keyword] {
			return e.heuristicResult(ctx, h.intent, original, domain.Entities{})
		}
	}

	return nil
}

func (e *Engine) heuristicResult(ctx context.Context, intentType domain.IntentType, original string, seed domain.Entities) *domain.ResolvedIntent {
	entities := seed
	if intent := e.catalog.Intent(intentType.String()); intent != nil {
		extracted, _ := e.extractEntities(ctx, intent, original, nil)
		if entities.Stages != nil {
			extracted.Stages = entities.Stages
		}
		entities = extracted
	}

	e.logger.Info("Heuristic intent",
		zap.String("intent", intentType.String()),
	)

	return &domain.ResolvedIntent{
		Intent:          intentType,
		Entities:        entities,
		Confidence:      domain.ConfidenceHeuristic,
		OriginalMessage: original,
	}
}

// record persists conversation context for follow-ups. Pagination continues
// the prior query, so it never overwrites the recorded filters.
func (e *Engine) record(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) {
	if resolved.IsUnknown() || resolved.Intent == domain.IntentPaginationNext {
		return
	}

	convCtx := &domain.ConversationContext{
		LastIntent:  resolved.Intent,
		LastFilters: BuildFilters(resolved),
		Timestamp:   e.now(),
	}

	if err := e.store.Set(ctx, chatCtx.UserID, chatCtx.ChannelID, convCtx); err != nil {
		e.logger.Warn("Failed to record conversation context", zap.Error(err))
	}
}

// BuildFilters flattens resolved entities into the filter map carried by the
// conversation context and consumed by the command layer.
func BuildFilters(resolved *domain.ResolvedIntent) map[string]any {
	filters := map[string]any{}

	if resolved.Entities.Owner != nil {
		filters["owner"] = resolved.Entities.Owner.DisplayName
	}
	if resolved.Entities.Stages != nil {
		filters["stages"] = resolved.Entities.Stages.Stages
	}
	if resolved.Entities.Accounts != nil {
		filters["accounts"] = resolved.Entities.Accounts.RawNames()
	}
	if resolved.Entities.Timeframe != nil {
		filters["timeframe"] = resolved.Entities.Timeframe.Label
	}
	if resolved.Entities.Amount != nil {
		filters["min_amount"] = resolved.Entities.Amount.Value
	}

	return filters
}

// entitiesFromFilters rebuilds the entity set a context follow-up reuses.
func entitiesFromFilters(filters map[string]any) domain.Entities {
	var entities domain.Entities

	if owner, ok := filters["owner"].(string); ok && owner != "" {
		entities.Owner = &domain.Owner{DisplayName: owner}
	}
	if stages, ok := filters["stages"].([]string); ok && len(stages) > 0 {
		entities.Stages = &domain.StageSet{Stages: stages}
	}
	if stagesAny, ok := filters["stages"].([]any); ok && len(stagesAny) > 0 {
		// JSON round-trips through the Redis store decode as []any
		stages := make([]string, 0, len(stagesAny))
		for _, s := range stagesAny {
			if label, ok := s.(string); ok {
				stages = append(stages, label)
			}
		}
		if len(stages) > 0 {
			entities.Stages = &domain.StageSet{Stages: stages}
		}
	}

	return entities
}

func splitWords(s string) []string {
	return whitespacePattern.Split(s, -1)
}
