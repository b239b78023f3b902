package topics

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-interview-coach-be/internal/apperror"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/pkg/llm"
)

// scriptedLLM replays canned responses in order.
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

func testConfig() Config {
	return Config{
		MinTopics:      5,
		MaxTopics:      7,
		CallTimeout:    time.Second,
		MaxCallRetries: 0,
	}
}

const validTopicJSON = `{"interview_topics": ["API Design", "Team Leadership", "Payments Systems", "Python Proficiency", "System Scalability"]}`

func TestExtractValidRoadmap(t *testing.T) {
	provider := &scriptedLLM{responses: []string{validTopicJSON}}
	extractor := NewExtractor(provider, logger.NewNopLogger(), testConfig())

	got, err := extractor.Extract(context.Background(), "Senior Backend Engineer, Python, leadership, payments")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 topics, got %d", len(got))
	}
	if got[0] != "API Design" {
		t.Errorf("roadmap order not preserved, first topic is %q", got[0])
	}
}

func TestExtractStripsMarkdownFence(t *testing.T) {
	provider := &scriptedLLM{responses: []string{"```json\n" + validTopicJSON + "\n```"}}
	extractor := NewExtractor(provider, logger.NewNopLogger(), testConfig())

	got, err := extractor.Extract(context.Background(), "job description")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 topics, got %d", len(got))
	}
}

func TestExtractReRequestsOnceOnMalformed(t *testing.T) {
	provider := &scriptedLLM{responses: []string{"not json at all", validTopicJSON}}
	extractor := NewExtractor(provider, logger.NewNopLogger(), testConfig())

	got, err := extractor.Extract(context.Background(), "job description")
	if err != nil {
		t.Fatalf("expected recovery on second request, got error: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", provider.calls)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 topics, got %d", len(got))
	}
}

func TestExtractPersistentlyMalformed(t *testing.T) {
	provider := &scriptedLLM{responses: []string{"still not json"}}
	extractor := NewExtractor(provider, logger.NewNopLogger(), testConfig())

	_, err := extractor.Extract(context.Background(), "job description")
	if !errors.Is(err, apperror.ErrMalformedTopicList) {
		t.Fatalf("expected ErrMalformedTopicList, got %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected exactly 2 calls (one re-request), got %d", provider.calls)
	}
	if apperror.StageOf(err) != apperror.StageTopicExtraction {
		t.Errorf("expected topic_extraction stage, got %s", apperror.StageOf(err))
	}
}

func TestExtractCountOutsideBounds(t *testing.T) {
	provider := &scriptedLLM{responses: []string{`{"interview_topics": ["Only", "Two"]}`}}
	extractor := NewExtractor(provider, logger.NewNopLogger(), testConfig())

	_, err := extractor.Extract(context.Background(), "job description")
	if !errors.Is(err, apperror.ErrMalformedTopicList) {
		t.Fatalf("expected ErrMalformedTopicList for out-of-bounds count, got %v", err)
	}
}

func TestExtractEmptyLabelRejected(t *testing.T) {
	provider := &scriptedLLM{responses: []string{`{"interview_topics": ["A", "", "C", "D", "E"]}`}}
	extractor := NewExtractor(provider, logger.NewNopLogger(), testConfig())

	_, err := extractor.Extract(context.Background(), "job description")
	if !errors.Is(err, apperror.ErrMalformedTopicList) {
		t.Fatalf("expected ErrMalformedTopicList for empty label, got %v", err)
	}
}

func TestExtractProviderDown(t *testing.T) {
	provider := &scriptedLLM{err: errors.New("connection refused")}
	extractor := NewExtractor(provider, logger.NewNopLogger(), testConfig())

	_, err := extractor.Extract(context.Background(), "job description")
	if err == nil {
		t.Fatal("expected error when provider is down")
	}
	if apperror.KindOf(err) != apperror.KindExternalCall {
		t.Fatalf("expected ExternalCallError kind, got %s", apperror.KindOf(err))
	}
}
