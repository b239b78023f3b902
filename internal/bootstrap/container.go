package bootstrap

import (
	"context"
	"log"

	"ai-interview-coach-be/internal/config"
	"ai-interview-coach-be/internal/controller"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/internal/repository/unitofwork"
	"ai-interview-coach-be/internal/service"
	"ai-interview-coach-be/pkg/embedding"
	"ai-interview-coach-be/pkg/interview/evaluation"
	"ai-interview-coach-be/pkg/interview/flow"
	"ai-interview-coach-be/pkg/interview/questions"
	"ai-interview-coach-be/pkg/interview/topics"
	"ai-interview-coach-be/pkg/llm/factory"
	"ai-interview-coach-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	InterviewController controller.IInterviewController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	// Topic labels repeat across retrieval calls; memoize their vectors.
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Pipeline stages
	// Non-transactional repositories for the background flow; the flow is the
	// only writer while it runs, so each write stands alone.
	flowUow := uowFactory.NewUnitOfWork(context.Background())
	sessionRepo := flowUow.SessionRepository()
	chunkRepo := flowUow.ResumeChunkRepository()

	retriever := retrieval.NewService(embeddingProvider, chunkRepo, sysLogger, retrieval.Config{
		TopK:           cfg.Interview.RetrievalK,
		ContextBudget:  cfg.Interview.ContextCharBudget,
		CallTimeout:    cfg.Interview.ExternalCallTimeout,
		MaxCallRetries: cfg.Interview.ExternalCallMaxRetries,
	})
	topicExtractor := topics.NewExtractor(llmProvider, sysLogger, topics.Config{
		MinTopics:      cfg.Interview.MinTopics,
		MaxTopics:      cfg.Interview.MaxTopics,
		CallTimeout:    cfg.Interview.ExternalCallTimeout,
		MaxCallRetries: cfg.Interview.ExternalCallMaxRetries,
	})
	questionGenerator := questions.NewGenerator(llmProvider, retriever, sysLogger, questions.Config{
		MinPerTopic:    cfg.Interview.QuestionsPerTopicMin,
		MaxPerTopic:    cfg.Interview.QuestionsPerTopicMax,
		CallTimeout:    cfg.Interview.ExternalCallTimeout,
		MaxCallRetries: cfg.Interview.ExternalCallMaxRetries,
	})
	evaluator := evaluation.NewEvaluator(llmProvider, sysLogger, evaluation.Config{
		CallTimeout:    cfg.Interview.ExternalCallTimeout,
		MaxCallRetries: cfg.Interview.ExternalCallMaxRetries,
	})

	orchestrator := flow.NewOrchestrator(
		sessionRepo,
		chunkRepo,
		embeddingProvider,
		llmProvider,
		topicExtractor,
		questionGenerator,
		evaluator,
		sysLogger,
		flow.Config{
			ChunkSize:               cfg.Interview.ChunkSize,
			ChunkOverlap:            cfg.Interview.ChunkOverlap,
			MaxConcurrentTopicTasks: cfg.Interview.MaxConcurrentTopicTasks,
			CallTimeout:             cfg.Interview.ExternalCallTimeout,
			MaxCallRetries:          cfg.Interview.ExternalCallMaxRetries,
		},
	)

	// 5. Services
	flowRegistry := service.NewFlowRegistry()
	preparePublisher := service.NewPublisherService(cfg.Keys.PrepareTopic, pubSub)
	evaluatePublisher := service.NewPublisherService(cfg.Keys.EvaluateTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.PrepareTopic,
		cfg.Keys.EvaluateTopic,
		orchestrator,
		flowRegistry,
		sysLogger,
	)

	interviewService := service.NewInterviewService(
		uowFactory,
		preparePublisher,
		evaluatePublisher,
		evaluator,
		flowRegistry,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		InterviewController: controller.NewInterviewController(interviewService),
		ConsumerService:     consumerService,
		Logger:              sysLogger,
	}
}
