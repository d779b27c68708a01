package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/atlasops/salesops-bot-go/internal/adapter"
	"github.com/atlasops/salesops-bot-go/internal/command"
	"github.com/atlasops/salesops-bot-go/internal/config"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/nlu"
	"github.com/atlasops/salesops-bot-go/internal/slack"
	"go.uber.org/zap"
)

// Dependencies carries everything the bot needs at runtime. The app container
// assembles it; NewBot only validates and orchestrates.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Slack      *slack.Client
	Socket     *slack.SocketClient
	Formatter  *adapter.ResponseFormatter
	Engine     *nlu.Engine
	Dispatcher command.Dispatcher
}

// Bot is the event loop: Slack message in, resolved intent out, handler
// response back to the thread.
type Bot struct {
	deps        *Dependencies
	adapter     *adapter.MessageAdapter
	unsubscribe func()
	handlersWg  sync.WaitGroup
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, fmt.Errorf("bot dependencies must not be nil")
	}
	if deps.Config == nil || deps.Slack == nil || deps.Socket == nil {
		return nil, fmt.Errorf("bot transport dependencies not configured")
	}
	if deps.Engine == nil || deps.Dispatcher == nil || deps.Formatter == nil {
		return nil, fmt.Errorf("bot resolution dependencies not configured")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Bot{deps: deps}, nil
}

// Start connects to Slack and blocks until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	botUserID, err := b.deps.Slack.AuthTest(ctx)
	if err != nil {
		return fmt.Errorf("slack auth check failed: %w", err)
	}

	b.adapter = adapter.NewMessageAdapter(botUserID, b.deps.Config.Slack.Channels)

	b.deps.Logger.Info("Bot identity confirmed",
		zap.String("bot_user_id", botUserID),
		zap.Int("channels", len(b.deps.Config.Slack.Channels)),
	)

	b.unsubscribe = b.deps.Socket.OnMessage(func(event *slack.MessageEvent) {
		b.handlersWg.Add(1)
		go func() {
			defer b.handlersWg.Done()
			b.handleEvent(ctx, event)
		}()
	})

	if err := b.deps.Socket.Connect(ctx); err != nil {
		return fmt.Errorf("socket connect failed: %w", err)
	}

	<-ctx.Done()
	return nil
}

func (b *Bot) handleEvent(ctx context.Context, event *slack.MessageEvent) {
	chatCtx := b.adapter.ToChatContext(event)
	if chatCtx == nil {
		return
	}

	resolved, err := b.deps.Engine.ResolveMessage(ctx, chatCtx)
	if err != nil {
		b.deps.Logger.Warn("Resolution failed",
			zap.String("user", chatCtx.UserID),
			zap.Error(err),
		)
		return
	}

	if resolved.IsUnknown() {
		// Stay quiet in shared channels; only a direct question deserves the
		// fallback hint.
		b.deps.Logger.Debug("Unresolved message",
			zap.String("user", chatCtx.UserID),
		)
		return
	}

	if err := b.deps.Dispatcher.Dispatch(ctx, chatCtx, resolved); err != nil {
		b.deps.Logger.Error("Command dispatch failed",
			zap.String("intent", resolved.Intent.String()),
			zap.Error(err),
		)
		b.reply(ctx, chatCtx, b.deps.Formatter.FormatError("Something went wrong handling that. Check the logs."))
	}
}

func (b *Bot) reply(ctx context.Context, chatCtx *domain.ChatContext, text string) {
	if err := b.deps.Slack.PostMessage(ctx, chatCtx.ChannelID, chatCtx.ThreadTS, text); err != nil {
		b.deps.Logger.Error("Failed to send reply", zap.Error(err))
	}
}

// Shutdown stops the socket listener and waits for in-flight handlers.
func (b *Bot) Shutdown(ctx context.Context) error {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}

	if err := b.deps.Socket.Disconnect(); err != nil {
		b.deps.Logger.Error("Socket disconnect failed", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		b.handlersWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.deps.Logger.Info("All handlers finished")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out waiting for handlers")
	}
}
