package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"agentic-bi-be/internal/config"
	"agentic-bi-be/internal/controller"
	"agentic-bi-be/internal/handler"
	"agentic-bi-be/internal/pkg/logger"
	"agentic-bi-be/internal/repository/memory"
	"agentic-bi-be/internal/repository/specification"
	"agentic-bi-be/internal/repository/unitofwork"
	"agentic-bi-be/internal/service"
	"agentic-bi-be/internal/websocket"
	"agentic-bi-be/pkg/agents"
	"agentic-bi-be/pkg/embedding"
	"agentic-bi-be/pkg/health"
	"agentic-bi-be/pkg/llm/factory"
	"agentic-bi-be/pkg/retrieval"
	"agentic-bi-be/pkg/vectorstore"
	"agentic-bi-be/pkg/workflow"

	pkgNats "agentic-bi-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Hybrid fusion weights: dense carries more signal than lexical.
const (
	denseWeight = 0.6
	bm25Weight  = 0.4
)

type Container struct {
	// Controllers
	QueryController        controller.IQueryController
	ConversationController controller.IConversationController
	DocumentController     controller.IDocumentController

	// Background services (run by main)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	// Health gate, exposed for readiness endpoints
	HealthGate *health.Gate
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// One-shot durable store probe. The gate only flips one way after
	// this.
	gate := health.NewGate(probeDatabase(db))
	if !gate.Ready() {
		sysLogger.Warn("Bootstrap", "Database probe failed, starting in memory-only mode", nil)
	}

	// 2. Event bus (in-process ingestion queue)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Retrieval stack
	var searcher vectorstore.Searcher
	if cfg.Retrieval.VectorBackend == "qdrant" {
		searcher = vectorstore.NewQdrantSearcher(cfg.Retrieval.QdrantBaseURL)
		log.Printf("[INFO] Using Vector Backend: QDRANT (%s)", cfg.Retrieval.QdrantBaseURL)
	} else {
		searcher = service.NewPgVectorSearcher(uowFactory, gate)
		log.Printf("[INFO] Using Vector Backend: PGVECTOR")
	}

	textDense := retrieval.NewDenseRetriever(searcher, service.CollectionTextDocs, retrieval.ModalityText)
	imageDense := retrieval.NewDenseRetriever(searcher, service.CollectionImageDocs, retrieval.ModalityImage)

	lexicalIndex := buildLexicalIndex(uowFactory, gate)

	workflowLogger := initWorkflowLogger()

	var reranker retrieval.Reranker
	if cfg.Retrieval.RerankEnabled {
		reranker = retrieval.NewLLMReranker(llmProvider, workflowLogger)
		log.Printf("[INFO] LLM reranking enabled")
	}

	hybrid := retrieval.NewHybridRetriever(textDense, lexicalIndex, denseWeight, bm25Weight, workflowLogger)
	multimodal := retrieval.NewMultimodalRetriever(textDense, imageDense, reranker, cfg.Retrieval.TextWeight, cfg.Retrieval.ImageWeight, workflowLogger)

	fusionMethod := retrieval.FusionWeighted
	if cfg.Retrieval.FusionMethod == string(retrieval.FusionRRF) {
		fusionMethod = retrieval.FusionRRF
	}

	// 5. Workflow agents
	classifier := agents.NewLLMIntentClassifier(llmProvider, workflowLogger)
	retrieverAgent := agents.NewRetrieverAgent(hybrid, multimodal, fusionMethod, cfg.Retrieval.TopK, workflowLogger)
	analyzer := agents.NewLLMAnalyzer(llmProvider, workflowLogger)
	visualizer := agents.NewDataVisualizer(workflowLogger)
	orchestrator := workflow.NewOrchestrator(classifier, retrieverAgent, analyzer, visualizer, workflowLogger)

	// 6. Infrastructure: NATS + Redis + websocket hub
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 7. Services
	fallbackStore := memory.NewConversationStore()
	reportCache := memory.NewReportCache()

	publisherService := service.NewPublisherService(pubSub, cfg.App.IngestTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	conversationService := service.NewConversationService(uowFactory, fallbackStore, gate, sysLogger)
	queryService := service.NewQueryService(
		orchestrator,
		embeddingProvider,
		conversationService,
		reportCache,
		natsPub,
		sysLogger,
	)
	documentService := service.NewDocumentService(uowFactory, publisherService, gate)

	var notifService *service.NotificationService
	if natsSub != nil {
		notifService = service.NewNotificationService(natsSub, wsHub, wsLogger)
		go notifService.Start()
	}

	return &Container{
		QueryController:        controller.NewQueryController(queryService),
		ConversationController: controller.NewConversationController(conversationService),
		DocumentController:     controller.NewDocumentController(documentService),

		ConsumerService:     consumerService,
		NotificationService: notifService,

		StreamHandler: handler.NewStreamHandler(wsHub, wsLogger),
		WebSocketHub:  wsHub,
		HealthGate:    gate,
	}
}

// probeDatabase pings the underlying connection once at startup.
func probeDatabase(db *gorm.DB) bool {
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

// buildLexicalIndex loads every text chunk into the in-memory BM25
// index. Documents ingested after startup are only visible to dense
// retrieval until the next restart.
func buildLexicalIndex(uowFactory unitofwork.RepositoryFactory, gate *health.Gate) *retrieval.BM25Index {
	if !gate.Ready() {
		return retrieval.NewBM25Index(nil)
	}

	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByModality{Modality: "text"},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		log.Printf("[WARN] Failed to load chunks for lexical index: %v", err)
		return retrieval.NewBM25Index(nil)
	}

	docs := make([]retrieval.BM25Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, retrieval.BM25Document{
			ID:   chunk.Id.String(),
			Text: chunk.Content,
		})
	}
	log.Printf("[INFO] Lexical index built over %d chunks", len(docs))
	return retrieval.NewBM25Index(docs)
}

func initWorkflowLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "workflow.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[WORKFLOW] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
