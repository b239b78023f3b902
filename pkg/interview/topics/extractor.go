package topics

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
	"ai-interview-coach-be/pkg/utils"
)

// Config encapsulates roadmap bounds and call behaviour
type Config struct {
	MinTopics      int
	MaxTopics      int
	CallTimeout    time.Duration
	MaxCallRetries int
}

func DefaultConfig() Config {
	return Config{
		MinTopics:      5,
		MaxTopics:      7,
		CallTimeout:    60 * time.Second,
		MaxCallRetries: 3,
	}
}

type topicListEnvelope struct {
	InterviewTopics []string `json:"interview_topics"`
}

// Extractor turns a cleaned job description into an ordered interview
// roadmap. The roadmap drives everything downstream, so a list the model
// refuses to shape correctly is a fatal failure, not a degraded one.
type Extractor struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	config      Config
}

func NewExtractor(llmProvider llm.LLMProvider, log logger.ILogger, config Config) *Extractor {
	if config.MinTopics <= 0 {
		config.MinTopics = 5
	}
	if config.MaxTopics < config.MinTopics {
		config.MaxTopics = config.MinTopics
	}
	return &Extractor{
		llmProvider: llmProvider,
		logger:      log,
		config:      config,
	}
}

// Extract returns between MinTopics and MaxTopics topic labels in roadmap
// order. A malformed model response gets exactly one re-request before the
// stage fails with ErrMalformedTopicList.
func (e *Extractor) Extract(ctx context.Context, cleanedJD string) ([]string, error) {
	prompt := fmt.Sprintf(constant.TopicExtractionPrompt, cleanedJD, e.config.MinTopics, e.config.MaxTopics)

	var lastParseErr error
	for attempt := 0; attempt < 2; attempt++ {
		var response string
		err := utils.WithRetry(ctx, e.config.CallTimeout, e.config.MaxCallRetries, func(callCtx context.Context) error {
			resp, callErr := e.llmProvider.Generate(callCtx, prompt, llm.WithJSONOutput(), llm.WithTemperature(0.4))
			if callErr != nil {
				return callErr
			}
			response = resp
			return nil
		})
		if err != nil {
			return nil, apperror.Wrap(apperror.KindExternalCall, apperror.StageTopicExtraction,
				"topic extraction call failed", err)
		}

		topicList, parseErr := e.parse(response)
		if parseErr == nil {
			e.logger.Info("topics", "Interview roadmap extracted", map[string]interface{}{
				"topic_count": len(topicList),
			})
			return topicList, nil
		}

		lastParseErr = parseErr
		e.logger.Warn("topics", "Malformed topic list, re-requesting", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   parseErr.Error(),
		})
	}

	return nil, apperror.Wrap(apperror.KindFatalFlow, apperror.StageTopicExtraction,
		lastParseErr.Error(), apperror.ErrMalformedTopicList)
}

func (e *Extractor) parse(response string) ([]string, error) {
	var envelope topicListEnvelope
	if err := json.Unmarshal([]byte(extractJSON(response)), &envelope); err != nil {
		return nil, fmt.Errorf("decode topic list: %w", err)
	}

	topicList := make([]string, 0, len(envelope.InterviewTopics))
	for _, topic := range envelope.InterviewTopics {
		trimmed := strings.TrimSpace(topic)
		if trimmed == "" {
			return nil, fmt.Errorf("topic list contains an empty label")
		}
		topicList = append(topicList, trimmed)
	}

	if len(topicList) < e.config.MinTopics || len(topicList) > e.config.MaxTopics {
		return nil, fmt.Errorf("topic count %d outside [%d, %d]", len(topicList), e.config.MinTopics, e.config.MaxTopics)
	}

	return topicList, nil
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
