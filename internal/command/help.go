package command

import (
	"context"

	"github.com/atlasops/salesops-bot-go/internal/domain"
)

type HelpCommand struct {
	deps *Dependencies
}

func NewHelpCommand(deps *Dependencies) *HelpCommand {
	return &HelpCommand{deps: deps}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Show available queries and commands"
}

func (c *HelpCommand) Execute(ctx context.Context, chatCtx *domain.ChatContext, _ *domain.ResolvedIntent) error {
	if err := c.deps.validate(); err != nil {
		return err
	}

	return c.deps.SendMessage(ctx, chatCtx, c.deps.Formatter.FormatHelp())
}
