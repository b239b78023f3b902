package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-interview-coach-be/internal/apperror"
	"ai-interview-coach-be/internal/constant"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/pkg/llm"
	"ai-interview-coach-be/pkg/retrieval"
	"ai-interview-coach-be/pkg/utils"

	"github.com/google/uuid"
)

// Config encapsulates per-topic generation bounds and call behaviour
type Config struct {
	MinPerTopic    int
	MaxPerTopic    int
	CallTimeout    time.Duration
	MaxCallRetries int
}

func DefaultConfig() Config {
	return Config{
		MinPerTopic:    2,
		MaxPerTopic:    4,
		CallTimeout:    60 * time.Second,
		MaxCallRetries: 3,
	}
}

type questionListEnvelope struct {
	Questions []string `json:"questions"`
}

// Generator produces the questions for a single topic. Invocations are
// independent; concurrent callers share nothing mutable, only the read-only
// job description, so the flow can fan generators out freely.
type Generator struct {
	llmProvider llm.LLMProvider
	retriever   *retrieval.Service
	logger      logger.ILogger
	config      Config
}

func NewGenerator(llmProvider llm.LLMProvider, retriever *retrieval.Service, log logger.ILogger, config Config) *Generator {
	if config.MinPerTopic <= 0 {
		config.MinPerTopic = 2
	}
	if config.MaxPerTopic < config.MinPerTopic {
		config.MaxPerTopic = config.MinPerTopic
	}
	return &Generator{
		llmProvider: llmProvider,
		retriever:   retriever,
		logger:      log,
		config:      config,
	}
}

// Generate returns the questions for one topic. Any failure here is confined
// to the topic: the caller records it and the sibling topics keep going, so
// errors come back alongside an empty list instead of panicking the flow.
func (g *Generator) Generate(ctx context.Context, sessionId uuid.UUID, topicLabel, cleanedJD string) ([]string, error) {
	resumeContext, err := g.retriever.RetrieveContext(ctx, sessionId, topicLabel)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindIsolatedStageFailure, apperror.StageQuestionGen,
			fmt.Sprintf("context retrieval failed for topic %q", topicLabel), err)
	}
	if resumeContext == "" {
		resumeContext = constant.NoResumeContextPlaceholder
	}

	prompt := fmt.Sprintf(constant.QuestionGenerationPrompt,
		topicLabel, resumeContext, cleanedJD, g.config.MinPerTopic, g.config.MaxPerTopic)

	var lastParseErr error
	for attempt := 0; attempt < 2; attempt++ {
		var response string
		callErr := utils.WithRetry(ctx, g.config.CallTimeout, g.config.MaxCallRetries, func(callCtx context.Context) error {
			resp, genErr := g.llmProvider.Generate(callCtx, prompt, llm.WithJSONOutput(), llm.WithTemperature(0.7))
			if genErr != nil {
				return genErr
			}
			response = resp
			return nil
		})
		if callErr != nil {
			return nil, apperror.Wrap(apperror.KindIsolatedStageFailure, apperror.StageQuestionGen,
				fmt.Sprintf("generation call failed for topic %q", topicLabel), callErr)
		}

		questionList, parseErr := g.parse(response)
		if parseErr == nil {
			return questionList, nil
		}

		lastParseErr = parseErr
		g.logger.Warn("questions", "Malformed question list, re-requesting", map[string]interface{}{
			"topic":   topicLabel,
			"attempt": attempt + 1,
			"error":   parseErr.Error(),
		})
	}

	return nil, apperror.Wrap(apperror.KindIsolatedStageFailure, apperror.StageQuestionGen,
		fmt.Sprintf("malformed question list for topic %q", topicLabel), lastParseErr)
}

func (g *Generator) parse(response string) ([]string, error) {
	var envelope questionListEnvelope
	if err := json.Unmarshal([]byte(extractJSON(response)), &envelope); err != nil {
		return nil, fmt.Errorf("decode question list: %w", err)
	}

	questionList := make([]string, 0, len(envelope.Questions))
	for _, question := range envelope.Questions {
		trimmed := strings.TrimSpace(question)
		if trimmed == "" {
			return nil, fmt.Errorf("question list contains empty text")
		}
		questionList = append(questionList, trimmed)
	}

	if len(questionList) < g.config.MinPerTopic || len(questionList) > g.config.MaxPerTopic {
		return nil, fmt.Errorf("question count %d outside [%d, %d]", len(questionList), g.config.MinPerTopic, g.config.MaxPerTopic)
	}

	return questionList, nil
}

// extractJSON isolates JSON content from response
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return response
	}

	return response[startIdx : endIdx+1]
}
