package command

import (
	"context"
	"fmt"

	"github.com/atlasops/salesops-bot-go/internal/adapter"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/matcher"
	"github.com/atlasops/salesops-bot-go/internal/nlu"
	"github.com/atlasops/salesops-bot-go/internal/service/crm"
	"go.uber.org/zap"
)

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, chatCtx *domain.ChatContext, resolved *domain.ResolvedIntent) error
}

// CRMGateway is the slice of the CRM client the handlers consume.
type CRMGateway interface {
	QueryOpportunities(ctx context.Context, filters crm.PipelineFilters) ([]*domain.Opportunity, error)
	UpdateOpportunityStage(ctx context.Context, opportunityID, stage string) error
	UpdateAccountOwner(ctx context.Context, accountID, ownerID string) error
	CreateOpportunity(ctx context.Context, accountID, name string, amount float64) (string, error)
	FindUserIDByName(ctx context.Context, name string) (string, error)
}

type Dependencies struct {
	CRM         CRMGateway
	Matcher     *matcher.AccountMatcher
	Store       nlu.ContextStore
	Formatter   *adapter.ResponseFormatter
	SendMessage func(ctx context.Context, chatCtx *domain.ChatContext, text string) error
	Logger      *zap.Logger
}

func (d *Dependencies) validate() error {
	if d == nil {
		return fmt.Errorf("command dependencies not configured")
	}
	if d.CRM == nil || d.Formatter == nil || d.SendMessage == nil {
		return fmt.Errorf("command services not configured")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return nil
}

// matchedAccount resolves an extracted account name to an index record,
// preferring the match the engine already attached.
func (d *Dependencies) matchedAccount(ctx context.Context, name domain.AccountName) *domain.AccountRecord {
	if name.Matched != nil {
		return name.Matched
	}
	if d.Matcher == nil {
		return nil
	}
	return d.Matcher.FindBestMatch(ctx, name.Raw)
}
