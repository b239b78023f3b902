package evaluation

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

// Config encapsulates evaluation call behaviour
type Config struct {
	CallTimeout    time.Duration
	MaxCallRetries int
}

func DefaultConfig() Config {
	return Config{
		CallTimeout:    60 * time.Second,
		MaxCallRetries: 3,
	}
}

// QuestionAnswer is a single transcript turn.
type QuestionAnswer struct {
	Question string
	Answer   string
}

// Report is the structured outcome of an evaluation.
type Report struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Evaluator assesses a finished transcript against the job description. It
// is stateless: any transcript plus JD can be evaluated without an active
// session, which is what the standalone evaluate endpoint relies on.
type Evaluator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	config      Config
}

func NewEvaluator(llmProvider llm.LLMProvider, log logger.ILogger, config Config) *Evaluator {
	return &Evaluator{
		llmProvider: llmProvider,
		logger:      log,
		config:      config,
	}
}

// Evaluate runs the transcript through the evaluation model. A response that
// fails validation gets exactly one re-request before the stage fails.
func (e *Evaluator) Evaluate(ctx context.Context, jobDescription string, transcript []QuestionAnswer) (*Report, error) {
	if len(transcript) == 0 {
		return nil, apperror.New(apperror.KindValidation, apperror.StageEvaluation, "transcript is empty")
	}

	prompt := fmt.Sprintf(constant.EvaluationPrompt, jobDescription, formatTranscript(transcript))

	var lastParseErr error
	for attempt := 0; attempt < 2; attempt++ {
		var response string
		err := utils.WithRetry(ctx, e.config.CallTimeout, e.config.MaxCallRetries, func(callCtx context.Context) error {
			resp, callErr := e.llmProvider.Generate(callCtx, prompt, llm.WithJSONOutput(), llm.WithTemperature(0.3))
			if callErr != nil {
				return callErr
			}
			response = resp
			return nil
		})
		if err != nil {
			return nil, apperror.Wrap(apperror.KindExternalCall, apperror.StageEvaluation,
				"evaluation call failed", err)
		}

		report, parseErr := parseReport(response)
		if parseErr == nil {
			return report, nil
		}

		lastParseErr = parseErr
		e.logger.Warn("evaluation", "Malformed evaluation report, re-requesting", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   parseErr.Error(),
		})
	}

	return nil, apperror.Wrap(apperror.KindFatalFlow, apperror.StageEvaluation,
		"evaluation report failed validation", lastParseErr)
}

// formatTranscript lays the turns out the way the evaluation prompt expects.
func formatTranscript(transcript []QuestionAnswer) string {
	var sb strings.Builder
	for i, qa := range transcript {
		fmt.Fprintf(&sb, "\n[QUESTION %d]\n", i+1)
		fmt.Fprintf(&sb, "Interviewer: %s\n", qa.Question)
		fmt.Fprintf(&sb, "Candidate: %s\n", qa.Answer)
	}
	return sb.String()
}

func parseReport(response string) (*Report, error) {
	var report Report
	if err := json.Unmarshal([]byte(extractJSON(response)), &report); err != nil {
		return nil, fmt.Errorf("decode evaluation report: %w", err)
	}

	if strings.TrimSpace(report.Summary) == "" {
		return nil, fmt.Errorf("evaluation summary is empty")
	}
	if len(report.Strengths) == 0 {
		return nil, fmt.Errorf("evaluation strengths are empty")
	}
	if len(report.Weaknesses) == 0 {
		return nil, fmt.Errorf("evaluation weaknesses are empty")
	}

	return &report, nil
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
