package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/philippgille/chromem-go"
	"gorm.io/gorm"

	"github.com/DeyvidJesus/gomech-ai-service/internal/actions"
	"github.com/DeyvidJesus/gomech-ai-service/internal/audit"
	"github.com/DeyvidJesus/gomech-ai-service/internal/chart"
	"github.com/DeyvidJesus/gomech-ai-service/internal/chat"
	"github.com/DeyvidJesus/gomech-ai-service/internal/config"
	"github.com/DeyvidJesus/gomech-ai-service/internal/crm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/handlers"
	apphttp "github.com/DeyvidJesus/gomech-ai-service/internal/http"
	httpH "github.com/DeyvidJesus/gomech-ai-service/internal/http/handlers"
	"github.com/DeyvidJesus/gomech-ai-service/internal/knowledge"
	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/management"
	"github.com/DeyvidJesus/gomech-ai-service/internal/memory"
	"github.com/DeyvidJesus/gomech-ai-service/internal/observability"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/predictive"
	"github.com/DeyvidJesus/gomech-ai-service/internal/router"
	"github.com/DeyvidJesus/gomech-ai-service/internal/simulation"
	"github.com/DeyvidJesus/gomech-ai-service/internal/sqlqa"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
	"github.com/DeyvidJesus/gomech-ai-service/internal/transport"
	"github.com/DeyvidJesus/gomech-ai-service/internal/vision"
	"github.com/DeyvidJesus/gomech-ai-service/internal/voice"
	"github.com/DeyvidJesus/gomech-ai-service/internal/websearch"
	"github.com/DeyvidJesus/gomech-ai-service/internal/workerpool"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer logg.Sync()

	logg.Info("🚀 Starting GoMech AI Service...", "service", cfg.ServiceName, "env", cfg.Environment)
	if missing := cfg.MissingOptional(); len(missing) > 0 {
		logg.Warn("⚠️ optional configuration missing, running degraded", "missing", missing)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitOTel(ctx, logg, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	// Database
	logg.Info("💾 Connecting to database...", "driver", cfg.DatabaseDriver)
	db, err := store.Open(ctx, store.Options{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL}, logg)
	if err != nil {
		logg.Fatal("❌ Failed to connect to database", "error", err)
	}
	if err := store.Migrate(db); err != nil {
		logg.Fatal("❌ Failed to migrate database", "error", err)
	}
	logg.Info("✅ Database ready")

	probes := map[string]httpH.Probe{}

	// Conversation memory
	var (
		convStore memory.Store = memory.NewSQLStore(db)
		guard     actions.ReplayGuard
	)
	if cfg.RedisURL != "" {
		logg.Info("🔌 Connecting to Redis...")
		redisStore, err := memory.NewRedisStore(cfg.RedisURL, cfg.HistoryTTL)
		if err != nil {
			logg.Fatal("❌ Failed to connect to Redis", "error", err)
		}
		guard = actions.NewRedisReplayGuard(redisStore.Client())
		probes["redis"] = redisStore.Ping
		if cfg.ChatStore == "redis" {
			// closed through the memory manager
			convStore = redisStore
		} else {
			defer redisStore.Close()
		}
		logg.Info("✅ Redis connected", "chat_store", cfg.ChatStore)
	}
	memoryManager := memory.NewManager(convStore, logg)
	defer memoryManager.Close()
	locks := memory.NewLockRegistry(cfg.LockRegistrySize)
	pool := workerpool.New(cfg.WorkerPoolSize)
	defer pool.Close()

	// Model provider
	var (
		provider   llm.LLMProvider   = llm.Unconfigured{}
		classifier router.Classifier = router.NewKeywordClassifier()
		embedder   chromem.EmbeddingFunc
	)
	if openaiProvider, err := llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel, cfg.ChatTimeout); err != nil {
		logg.Warn("⚠️ model provider disabled", "error", err)
	} else {
		provider = openaiProvider
		classifier = router.NewLLMClassifier(provider, cfg.RouterModel)
		if e, err := openaiProvider.Embedder(cfg.EmbeddingModel); err != nil {
			logg.Warn("⚠️ embeddings disabled", "error", err)
		} else {
			embedder = knowledge.EmbeddingFunc(e)
		}
		logg.Info("🤖 OpenAI provider initialized", "model", cfg.ChatModel)
	}

	// NATS connection first: the executor publishes events on it.
	var (
		natsTransport *transport.NATSTransport
		publisher     actions.EventPublisher
	)
	if cfg.NatsEnabled {
		logg.Info("📡 Connecting to NATS...", "url", cfg.NatsURL)
		natsTransport, err = transport.NewNATSTransport(cfg, logg)
		if err != nil {
			logg.Fatal("❌ Failed to initialize NATS transport", "error", err)
		}
		defer natsTransport.Close()
		publisher = natsTransport
		probes["nats"] = natsTransport.Ping
	}

	// Actions
	catalog, err := actions.DefaultCatalog()
	if err != nil {
		logg.Fatal("❌ Failed to load action catalog", "error", err)
	}
	signer := actions.NewTokenSigner(cfg.ConfirmTokenSecret, cfg.ConfirmTokenTTL)
	dispatcher := actions.NewDispatcher(catalog, actions.NewLLMExtractor(provider, logg), signer, logg)
	executor := actions.NewExecutor(catalog, actions.ExecutorOptions{
		BaseURL:      cfg.BackendURL,
		Timeout:      cfg.ConfirmTimeout,
		Signer:       signer,
		Guard:        guard,
		RequireToken: cfg.RequireConfirmToken,
		Publisher:    publisher,
	}, logg)

	// Responders
	reader := store.NewReader(db)
	stats := predictive.StatsFunc(func(ctx context.Context) (store.OperationalStats, error) {
		return store.Stats(ctx, db, time.Now())
	})
	chatService := chat.NewService(memoryManager, provider, locks, pool, chat.Options{Timeout: cfg.ChatTimeout, Model: cfg.ChatModel}, logg)
	advisor := management.New(provider, management.NewDBLoader(db), logg)
	voiceClient := voice.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatTimeout, logg)
	visionService := vision.New(provider, cfg.VisionModel, logg)
	knowledgeBase := newKnowledgeBase(cfg, provider, embedder, logg)

	assistant := handlers.NewAssistant(handlers.Deps{
		Router:      router.New(classifier, logg),
		Chat:        chatService,
		Data:        sqlqa.New(provider, reader, logg),
		Chart:       chart.New(provider, reader, chart.Renderer{FontPath: cfg.ChartFontPath}, logg),
		Search:      websearch.New(cfg.YouTubeAPIKey, "", cfg.BackendTimeout, logg),
		Audit:       audit.New(provider, audit.NewClient(cfg.BackendURL, cfg.BackendTimeout), logg),
		Advisor:     advisor,
		Actions:     dispatcher,
		Executor:    executor,
		Transcriber: voiceClient,
		Vision:      visionService,
	}, logg)

	if natsTransport != nil {
		if err := natsTransport.Start(assistant); err != nil {
			logg.Fatal("❌ Failed to start NATS transport", "error", err)
		}
	}

	cfgRouter := apphttp.RouterConfig{
		ServiceName:       cfg.ServiceName,
		AllowedOrigins:    cfg.AllowedOrigins,
		Log:               logg,
		ChatHandler:       httpH.NewChatHandler(logg, assistant, chatService, executor),
		ManagementHandler: httpH.NewManagementHandler(logg, advisor),
		CRMHandler:        httpH.NewCRMHandler(logg, crm.New(provider, logg)),
		VoiceHandler:      httpH.NewVoiceHandler(logg, voiceClient),
		VisionHandler:     httpH.NewVisionHandler(logg, visionService),
		PredictiveHandler: httpH.NewPredictiveHandler(logg, predictive.New(stats, logg)),
		SimulationHandler: httpH.NewSimulationHandler(logg, simulation.New(provider, stats, logg)),
		StatusHandler: httpH.NewStatusHandler(logg, httpH.StatusDeps{
			DB:      db,
			Env:     cfg.EnvPresence,
			Probes:  probes,
			Locks:   locks,
			Workers: pool,
		}),
	}
	if knowledgeBase != nil {
		cfgRouter.KnowledgeHandler = httpH.NewKnowledgeHandler(logg, knowledgeBase)
	}
	server := apphttp.NewServer(cfg.HTTPAddr, cfgRouter)

	errCh := make(chan error, 1)
	go func() {
		logg.Info("✅ GoMech AI Service is running!", "addr", cfg.HTTPAddr)
		errCh <- server.Run()
	}()

	select {
	case <-ctx.Done():
		logg.Info("🛑 Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logg.Error("❌ HTTP server failed", "error", err)
		}
	}

	logg.Info("🔄 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Warn("⚠️ Error stopping HTTP server", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logg.Warn("⚠️ Error flushing traces", "error", err)
	}
	closeDB(db, logg)
	logg.Info("👋 GoMech AI Service stopped")
}

// newKnowledgeBase returns nil when no embedder is available.
func newKnowledgeBase(cfg *config.Config, provider llm.LLMProvider, embedder chromem.EmbeddingFunc, logg *logger.Logger) *knowledge.Base {
	if embedder == nil {
		return nil
	}
	kb, err := knowledge.New(provider, embedder, knowledge.Options{
		Dir:           cfg.KnowledgeDir,
		EnhancedModel: cfg.ChatModel,
		StandardModel: cfg.ChatModel,
	}, logg)
	if err != nil {
		logg.Warn("⚠️ knowledge base disabled", "error", err)
		return nil
	}
	logg.Info("📚 Knowledge base ready", "documents", kb.Count(), "dir", cfg.KnowledgeDir)
	return kb
}

func closeDB(db *gorm.DB, logg *logger.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logg.Warn("⚠️ Error closing database", "error", err)
	}
}
