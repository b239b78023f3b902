package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-interview-coach-be/internal/apperror"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/pkg/llm"
)

type scriptedLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return s.next()
}

func (s *scriptedLLM) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return s.next()
}

func (s *scriptedLLM) next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return s.responses[idx], nil
}

func newTestEvaluator(provider llm.LLMProvider) *Evaluator {
	return NewEvaluator(provider, logger.NewNopLogger(), Config{
		CallTimeout:    time.Second,
		MaxCallRetries: 0,
	})
}

var sampleTranscript = []QuestionAnswer{
	{Question: "Walk me through the payments API you built.", Answer: "I designed and shipped it in Go."},
	{Question: "How did you lead your team?", Answer: "Weekly pairing and clear ownership."},
}

const validReportJSON = `{
	"summary": "Solid backend candidate with payments experience.",
	"strengths": ["Concrete API design experience"],
	"weaknesses": ["Light on distributed systems depth"],
	"recommendations": ["Probe further on scaling war stories"]
}`

func TestEvaluateValidReport(t *testing.T) {
	provider := &scriptedLLM{responses: []string{validReportJSON}}
	evaluator := newTestEvaluator(provider)

	report, err := evaluator.Evaluate(context.Background(), "Senior Backend Engineer", sampleTranscript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Summary == "" {
		t.Error("summary must not be empty")
	}
	if len(report.Strengths) == 0 || len(report.Weaknesses) == 0 {
		t.Error("strengths and weaknesses must not be empty")
	}
}

func TestEvaluateEmptyTranscript(t *testing.T) {
	provider := &scriptedLLM{responses: []string{validReportJSON}}
	evaluator := newTestEvaluator(provider)

	_, err := evaluator.Evaluate(context.Background(), "Senior Backend Engineer", nil)
	if err == nil {
		t.Fatal("expected error for empty transcript")
	}
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected ValidationError kind, got %s", apperror.KindOf(err))
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not be called, got %d calls", provider.calls)
	}
}

func TestEvaluateReRequestsOnceOnMissingFields(t *testing.T) {
	provider := &scriptedLLM{responses: []string{`{"summary": ""}`, validReportJSON}}
	evaluator := newTestEvaluator(provider)

	report, err := evaluator.Evaluate(context.Background(), "Senior Backend Engineer", sampleTranscript)
	if err != nil {
		t.Fatalf("expected recovery on second request, got: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", provider.calls)
	}
	if report.Summary == "" {
		t.Error("summary must not be empty")
	}
}

func TestEvaluatePersistentlyMalformed(t *testing.T) {
	provider := &scriptedLLM{responses: []string{`not json`}}
	evaluator := newTestEvaluator(provider)

	_, err := evaluator.Evaluate(context.Background(), "Senior Backend Engineer", sampleTranscript)
	if err == nil {
		t.Fatal("expected error for persistently malformed report")
	}
	if apperror.StageOf(err) != apperror.StageEvaluation {
		t.Errorf("expected evaluation stage, got %s", apperror.StageOf(err))
	}
	if provider.calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", provider.calls)
	}
}

func TestEvaluateProviderDown(t *testing.T) {
	provider := &scriptedLLM{err: errors.New("connection refused")}
	evaluator := newTestEvaluator(provider)

	_, err := evaluator.Evaluate(context.Background(), "Senior Backend Engineer", sampleTranscript)
	if err == nil {
		t.Fatal("expected error when provider is down")
	}
	if apperror.KindOf(err) != apperror.KindExternalCall {
		t.Fatalf("expected ExternalCallError kind, got %s", apperror.KindOf(err))
	}
}
