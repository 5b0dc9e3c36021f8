package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/deskbotai/larkgw/internal/actions"
	"github.com/deskbotai/larkgw/internal/config"
	"github.com/deskbotai/larkgw/internal/dispatch"
	"github.com/deskbotai/larkgw/internal/feishu"
	"github.com/deskbotai/larkgw/internal/handlers"
	"github.com/deskbotai/larkgw/internal/history"
	"github.com/deskbotai/larkgw/internal/llm"
	"github.com/deskbotai/larkgw/internal/logger"
	"github.com/deskbotai/larkgw/internal/server"
	"github.com/deskbotai/larkgw/internal/store"
	"github.com/deskbotai/larkgw/internal/webhook"
)

func runServe(cfgPath string) {
	fx.New(
		fx.Provide(
			func() (config.Config, error) { return provideConfig(cfgPath) },
			provideLogger,
			provideFeishuClient,
			provideScanner,
			provideLLMClient,
			provideConversations,
			provideDocumentCache,
			provideFileCache,
			provideMirror,
			provideActionService,
			provideDispatcher,
			provideServerHandler(handlers.NewHealthHandler),
			provideServerHandler(provideWebhookHandler),
			fx.Annotate(provideServer, fx.ParamTags("", "", `group:"server_handlers"`)),
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig(cfgPath string) (config.Config, error) {
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideFeishuClient(log *slog.Logger, cfg config.Config) *feishu.Client {
	return feishu.NewClient(log, cfg.Feishu)
}

func provideScanner(client *feishu.Client) *feishu.Scanner {
	return feishu.NewScanner(client)
}

func provideLLMClient(log *slog.Logger, cfg config.Config) *llm.Client {
	return llm.NewClient(log, cfg.Anthropic)
}

func provideConversations(cfg config.Config) *history.ConversationStore {
	return history.NewConversationStore(cfg.Cache.HistoryCap)
}

func provideDocumentCache(cfg config.Config) *history.DocumentCache {
	return history.NewDocumentCache(cfg.Cache.DocumentCap)
}

func provideFileCache(cfg config.Config) *history.FileCache {
	return history.NewFileCache(cfg.Cache.FileCap)
}

// provideMirror returns nil when persistence is disabled; the gateway then
// runs memory-only and caches reset on restart.
func provideMirror(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (*store.Mirror, error) {
	if !cfg.Postgres.Enabled {
		log.Info("postgres mirror disabled, running memory-only")
		return nil, nil
	}
	mirror, err := store.Open(context.Background(), log, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open postgres mirror: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { mirror.Close(); return nil }})
	return mirror, nil
}

func provideActionService(
	log *slog.Logger,
	llmClient *llm.Client,
	client *feishu.Client,
	scanner *feishu.Scanner,
	conversations *history.ConversationStore,
	docs *history.DocumentCache,
	files *history.FileCache,
	mirror *store.Mirror,
) *actions.Service {
	// A typed nil must not reach the interface field, or the nil guards stop
	// working.
	var m actions.Mirror
	if mirror != nil {
		m = mirror
	}
	return actions.NewService(log, llmClient, client, scanner, conversations, docs, files, m)
}

func provideDispatcher(
	log *slog.Logger,
	cfg config.Config,
	conversations *history.ConversationStore,
	files *history.FileCache,
	svc *actions.Service,
	client *feishu.Client,
	mirror *store.Mirror,
) *dispatch.Dispatcher {
	var m dispatch.Mirror
	if mirror != nil {
		m = mirror
	}
	return dispatch.NewDispatcher(log, cfg.Feishu.BotOpenID, conversations, files, svc, client, m)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, d *dispatch.Dispatcher) *webhook.Handler {
	return webhook.NewHandler(log, cfg.Feishu, d)
}

func provideServer(log *slog.Logger, cfg config.Config, hs []server.Handler) *server.Server {
	return server.NewServer(log, cfg.Server.Addr, hs)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, cfg config.Config, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("gateway starting", slog.String("addr", cfg.Server.Addr))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
