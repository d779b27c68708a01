package app

import (
	"context"
	"fmt"

	"github.com/atlasops/salesops-bot-go/internal/adapter"
	"github.com/atlasops/salesops-bot-go/internal/bot"
	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/command"
	"github.com/atlasops/salesops-bot-go/internal/config"
	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/matcher"
	"github.com/atlasops/salesops-bot-go/internal/nlu"
	"github.com/atlasops/salesops-bot-go/internal/nlu/extract"
	"github.com/atlasops/salesops-bot-go/internal/service/account"
	"github.com/atlasops/salesops-bot-go/internal/service/cache"
	"github.com/atlasops/salesops-bot-go/internal/service/crm"
	"github.com/atlasops/salesops-bot-go/internal/service/database"
	"github.com/atlasops/salesops-bot-go/internal/slack"
	"go.uber.org/zap"
)

// Container bundles assembled services for constructing runtime components
// like Bot.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	botDeps *bot.Dependencies
	closers []func()
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.botDeps == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Close tears down infrastructure services in reverse assembly order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services and returns a container capable
// of creating fully-wired bots. All heavy-weight initialization (DB, cache,
// catalog, account index) is performed here so that bot.NewBot stays focused
// on orchestration logic.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Pattern catalog
	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern catalog: %w", err)
	}
	logger.Info("Pattern catalog loaded", zap.Int("intents", len(cat.Intents())))

	// Cache and database
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	if err = cacheSvc.WaitUntilReady(ctx, constants.RedisConfig.ReadyTimeout); err != nil {
		return nil, fmt.Errorf("redis not ready: %w", err)
	}

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	// Account index and matcher
	accountRepo := database.NewAccountRepository(postgresSvc, logger)
	accountSvc, err := account.NewAccountService(ctx, accountRepo, cacheSvc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build account index: %w", err)
	}
	logger.Info("Account index loaded", zap.Int("accounts", accountSvc.Count()))

	accountMatcher := matcher.NewAccountMatcher(accountSvc, logger)

	// Resolution engine
	vocab := extract.NewOwnerVocabulary(extract.DefaultOwners())
	contextStore := nlu.NewRedisContextStore(cacheSvc, constants.CacheTTL.ConversationContext)
	engine := nlu.NewEngine(cat, accountMatcher, vocab, contextStore, logger)

	// CRM and transport
	crmClient := crm.NewClient(crm.Config{
		InstanceURL:  cfg.Salesforce.InstanceURL,
		ClientID:     cfg.Salesforce.ClientID,
		ClientSecret: cfg.Salesforce.ClientSecret,
		Username:     cfg.Salesforce.Username,
		Password:     cfg.Salesforce.Password,
	}, logger)

	slackClient := slack.NewClient(cfg.Slack.AppToken, cfg.Slack.BotToken, logger)
	socket := slack.NewSocketClient(slackClient, logger)
	formatter := adapter.NewResponseFormatter()

	// Command layer
	cmdDeps := &command.Dependencies{
		CRM:       crmClient,
		Matcher:   accountMatcher,
		Store:     contextStore,
		Formatter: formatter,
		SendMessage: func(ctx context.Context, chatCtx *domain.ChatContext, text string) error {
			return slackClient.PostMessage(ctx, chatCtx.ChannelID, chatCtx.ThreadTS, text)
		},
		Logger: logger,
	}

	registry := command.NewRegistry()
	registry.Register(command.NewPipelineCommand(cmdDeps))
	registry.Register(command.NewPaginationCommand(cmdDeps))
	registry.Register(command.NewLookupCommand(cmdDeps))
	registry.Register(command.NewDealHistoryCommand(cmdDeps))
	registry.Register(command.NewNurtureCommand(cmdDeps))
	registry.Register(command.NewReassignCommand(cmdDeps))
	registry.Register(command.NewCreateOpportunityCommand(cmdDeps))
	registry.Register(command.NewHelpCommand(cmdDeps))
	logger.Info("Command handlers registered", zap.Int("count", registry.Count()))

	deps := &bot.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Slack:      slackClient,
		Socket:     socket,
		Formatter:  formatter,
		Engine:     engine,
		Dispatcher: command.NewSequentialDispatcher(registry),
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		botDeps: deps,
		closers: closers,
	}, nil
}
