package questions

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-interview-coach-be/internal/apperror"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/internal/repository/memory"
	"ai-interview-coach-be/pkg/embedding"
	"ai-interview-coach-be/pkg/llm"
	"ai-interview-coach-be/pkg/retrieval"

	"github.com/google/uuid"
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

type stubEmbedder struct{}

func (stubEmbedder) Generate(_ context.Context, _ string, _ string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}},
	}, nil
}

func newTestGenerator(provider llm.LLMProvider) *Generator {
	retriever := retrieval.NewService(stubEmbedder{}, memory.NewResumeChunkRepository(), logger.NewNopLogger(), retrieval.Config{
		TopK:           4,
		ContextBudget:  4000,
		CallTimeout:    time.Second,
		MaxCallRetries: 0,
	})
	return NewGenerator(provider, retriever, logger.NewNopLogger(), Config{
		MinPerTopic:    2,
		MaxPerTopic:    4,
		CallTimeout:    time.Second,
		MaxCallRetries: 0,
	})
}

const validQuestionJSON = `{"questions": ["Walk me through the payments API you built.", "How did you handle idempotency?"]}`

func TestGenerateValidQuestions(t *testing.T) {
	provider := &scriptedLLM{responses: []string{validQuestionJSON}}
	generator := newTestGenerator(provider)

	got, err := generator.Generate(context.Background(), uuid.New(), "Payments Systems", "job description")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
}

func TestGenerateReRequestsOnceOnMalformed(t *testing.T) {
	provider := &scriptedLLM{responses: []string{`{"questions": []}`, validQuestionJSON}}
	generator := newTestGenerator(provider)

	got, err := generator.Generate(context.Background(), uuid.New(), "Payments Systems", "job description")
	if err != nil {
		t.Fatalf("expected recovery on second request, got error: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", provider.calls)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
}

func TestGenerateFailureIsIsolated(t *testing.T) {
	provider := &scriptedLLM{err: errors.New("connection refused")}
	generator := newTestGenerator(provider)

	got, err := generator.Generate(context.Background(), uuid.New(), "Payments Systems", "job description")
	if err == nil {
		t.Fatal("expected error when provider is down")
	}
	if got != nil {
		t.Fatalf("failed topic must yield no questions, got %v", got)
	}
	if apperror.KindOf(err) != apperror.KindIsolatedStageFailure {
		t.Fatalf("expected IsolatedStageFailure kind, got %s", apperror.KindOf(err))
	}
	if apperror.StageOf(err) != apperror.StageQuestionGen {
		t.Errorf("expected question_generation stage, got %s", apperror.StageOf(err))
	}
}

func TestGenerateTooManyQuestionsRejected(t *testing.T) {
	provider := &scriptedLLM{responses: []string{`{"questions": ["1", "2", "3", "4", "5", "6"]}`}}
	generator := newTestGenerator(provider)

	_, err := generator.Generate(context.Background(), uuid.New(), "Payments Systems", "job description")
	if err == nil {
		t.Fatal("expected error for count above bound")
	}
	if apperror.KindOf(err) != apperror.KindIsolatedStageFailure {
		t.Fatalf("expected IsolatedStageFailure kind, got %s", apperror.KindOf(err))
	}
	if provider.calls != 2 {
		t.Fatalf("expected exactly 2 calls (one re-request), got %d", provider.calls)
	}
}
