package flow

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"ai-interview-coach-be/internal/entity"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/internal/repository/memory"
	"ai-interview-coach-be/pkg/embedding"
	"ai-interview-coach-be/pkg/interview/evaluation"
	"ai-interview-coach-be/pkg/interview/questions"
	"ai-interview-coach-be/pkg/interview/topics"
	"ai-interview-coach-be/pkg/llm"
	"ai-interview-coach-be/pkg/retrieval"

	"github.com/google/uuid"
)

var testTopics = []string{"API Design", "Team Leadership", "Payments Systems", "Python Proficiency", "System Scalability"}

type stubEmbedder struct{}

func (stubEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	// Deterministic fake vector derived from the text.
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{float32(len(text)%7) + 1, 1}},
	}, nil
}

// pipelineLLM answers every prompt the pipeline can issue, keyed off prompt
// shape. Topics named in failTopics get a connection error; maxJitter adds
// random latency so completion order is unrelated to topic order.
type pipelineLLM struct {
	failTopics map[string]bool
	maxJitter  time.Duration
	topicJSON  string
	reportJSON string
}

func (p *pipelineLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	// Only the JD cleaning step uses Chat with a system message.
	if len(history) > 0 && history[0].Role == "system" {
		return "Cleaned: Senior Backend Engineer, Python, leadership, payments", nil
	}
	return "", fmt.Errorf("unexpected chat call")
}

func (p *pipelineLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	if p.maxJitter > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(p.maxJitter))))
	}

	if strings.Contains(prompt, "interview_topics") {
		return p.topicJSON, nil
	}
	if strings.Contains(prompt, "Current Topic:") {
		for topic := range p.failTopics {
			if strings.Contains(prompt, topic) {
				return "", fmt.Errorf("connection refused")
			}
		}
		for _, topic := range testTopics {
			if strings.Contains(prompt, topic) {
				return fmt.Sprintf(`{"questions": ["About %s, question one?", "About %s, question two?"]}`, topic, topic), nil
			}
		}
		return "", fmt.Errorf("unknown topic in prompt")
	}
	if strings.Contains(prompt, "transcript") || strings.Contains(prompt, "Transcript") {
		return p.reportJSON, nil
	}
	return "", fmt.Errorf("unrecognized prompt")
}

func defaultTopicJSON() string {
	quoted := make([]string, len(testTopics))
	for i, topic := range testTopics {
		quoted[i] = fmt.Sprintf("%q", topic)
	}
	return fmt.Sprintf(`{"interview_topics": [%s]}`, strings.Join(quoted, ", "))
}

const reportJSON = `{
	"summary": "Competent backend candidate.",
	"strengths": ["Payments depth"],
	"weaknesses": ["Scaling stories are thin"],
	"recommendations": ["Dig into incident response next round"]
}`

type testEnv struct {
	orchestrator *Orchestrator
	sessions     *memory.SessionRepository
	chunks       *memory.ResumeChunkRepository
}

func newTestEnv(provider llm.LLMProvider) *testEnv {
	sessions := memory.NewSessionRepository()
	chunks := memory.NewResumeChunkRepository()
	log := logger.NewNopLogger()
	embedder := stubEmbedder{}

	retriever := retrieval.NewService(embedder, chunks, log, retrieval.Config{
		TopK: 4, ContextBudget: 4000, CallTimeout: time.Second, MaxCallRetries: 0,
	})
	extractor := topics.NewExtractor(provider, log, topics.Config{
		MinTopics: 5, MaxTopics: 7, CallTimeout: time.Second, MaxCallRetries: 0,
	})
	generator := questions.NewGenerator(provider, retriever, log, questions.Config{
		MinPerTopic: 2, MaxPerTopic: 4, CallTimeout: time.Second, MaxCallRetries: 0,
	})
	evaluator := evaluation.NewEvaluator(provider, log, evaluation.Config{
		CallTimeout: time.Second, MaxCallRetries: 0,
	})

	orchestrator := NewOrchestrator(sessions, chunks, embedder, provider, extractor, generator, evaluator, log, Config{
		ChunkSize:               200,
		ChunkOverlap:            40,
		MaxConcurrentTopicTasks: 3,
		CallTimeout:             time.Second,
		MaxCallRetries:          0,
	})

	return &testEnv{orchestrator: orchestrator, sessions: sessions, chunks: chunks}
}

func createSession(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	session := &entity.InterviewSession{
		Id:             uuid.New(),
		CandidateName:  "Alex",
		JobDescription: "Senior Backend Engineer, Python, leadership, payments. Plus plenty of HR boilerplate.",
		ResumeText:     "5 years Python, led a 3-person team, built a payments API. " + strings.Repeat("More detail about shipped systems. ", 20),
		Phase:          entity.PhaseCreated,
		CreatedAt:      time.Now(),
	}
	if err := env.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return session.Id
}

func TestPrepareHappyPath(t *testing.T) {
	provider := &pipelineLLM{topicJSON: defaultTopicJSON(), reportJSON: reportJSON}
	env := newTestEnv(provider)
	sessionId := createSession(t, env)
	ctx := context.Background()

	if err := env.orchestrator.Prepare(ctx, sessionId); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	session, err := env.sessions.FindById(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindById: %v", err)
	}
	if session.Phase != entity.PhaseAwaitingResponses {
		t.Fatalf("expected awaiting_responses, got %s", session.Phase)
	}
	if session.CleanedJD == "" {
		t.Error("cleaned JD must be recorded")
	}

	count, err := env.chunks.CountBySessionId(ctx, sessionId)
	if err != nil {
		t.Fatalf("CountBySessionId: %v", err)
	}
	if count == 0 {
		t.Error("resume must be ingested into the retrieval partition")
	}

	topicList, err := env.sessions.FindTopics(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindTopics: %v", err)
	}
	if len(topicList) != len(testTopics) {
		t.Fatalf("expected %d topics, got %d", len(testTopics), len(topicList))
	}
	for i, topic := range topicList {
		if topic.Ordinal != i {
			t.Errorf("topic %d has ordinal %d", i, topic.Ordinal)
		}
		if topic.Label != testTopics[i] {
			t.Errorf("topic %d: got %q, want %q", i, topic.Label, testTopics[i])
		}
	}

	questionList, err := env.sessions.FindQuestions(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindQuestions: %v", err)
	}
	if len(questionList) != len(testTopics)*2 {
		t.Fatalf("expected %d questions, got %d", len(testTopics)*2, len(questionList))
	}
}

func TestPrepareResultsOrderedDespiteShuffledLatencies(t *testing.T) {
	provider := &pipelineLLM{topicJSON: defaultTopicJSON(), reportJSON: reportJSON, maxJitter: 25 * time.Millisecond}
	env := newTestEnv(provider)
	sessionId := createSession(t, env)
	ctx := context.Background()

	if err := env.orchestrator.Prepare(ctx, sessionId); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	topicList, err := env.sessions.FindTopics(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindTopics: %v", err)
	}
	questionList, err := env.sessions.FindQuestions(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindQuestions: %v", err)
	}

	// Questions must come back grouped by topic, in topic ordinal order,
	// regardless of which generator finished first.
	idx := 0
	for _, topic := range topicList {
		for ordinal := 0; ordinal < 2; ordinal++ {
			q := questionList[idx]
			if q.TopicId != topic.Id {
				t.Fatalf("question %d belongs to wrong topic", idx)
			}
			if q.Ordinal != ordinal {
				t.Fatalf("question %d has ordinal %d, want %d", idx, q.Ordinal, ordinal)
			}
			if !strings.Contains(q.Text, topic.Label) {
				t.Errorf("question %d does not reference its topic %q", idx, topic.Label)
			}
			idx++
		}
	}
}

func TestPrepareIsolatedTopicFailure(t *testing.T) {
	provider := &pipelineLLM{
		topicJSON:  defaultTopicJSON(),
		reportJSON: reportJSON,
		failTopics: map[string]bool{"Team Leadership": true},
	}
	env := newTestEnv(provider)
	sessionId := createSession(t, env)
	ctx := context.Background()

	if err := env.orchestrator.Prepare(ctx, sessionId); err != nil {
		t.Fatalf("Prepare must survive an isolated topic failure: %v", err)
	}

	session, err := env.sessions.FindById(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindById: %v", err)
	}
	if session.Phase != entity.PhaseAwaitingResponses {
		t.Fatalf("expected awaiting_responses, got %s", session.Phase)
	}

	topicList, err := env.sessions.FindTopics(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindTopics: %v", err)
	}
	if len(topicList) != len(testTopics) {
		t.Fatalf("failed topic must be retained, expected %d topics, got %d", len(testTopics), len(topicList))
	}

	questionList, err := env.sessions.FindQuestions(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindQuestions: %v", err)
	}
	byTopic := make(map[uuid.UUID]int)
	for _, q := range questionList {
		byTopic[q.TopicId]++
	}
	for _, topic := range topicList {
		if topic.Label == "Team Leadership" {
			if byTopic[topic.Id] != 0 {
				t.Errorf("failed topic must have zero questions, got %d", byTopic[topic.Id])
			}
		} else if byTopic[topic.Id] != 2 {
			t.Errorf("topic %q should have 2 questions, got %d", topic.Label, byTopic[topic.Id])
		}
	}
}

func TestPrepareFatalTopicExtraction(t *testing.T) {
	provider := &pipelineLLM{topicJSON: `not json`, reportJSON: reportJSON}
	env := newTestEnv(provider)
	sessionId := createSession(t, env)
	ctx := context.Background()

	if err := env.orchestrator.Prepare(ctx, sessionId); err == nil {
		t.Fatal("expected fatal error from topic extraction")
	}

	session, err := env.sessions.FindById(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindById: %v", err)
	}
	if session.Phase != entity.PhaseFailed {
		t.Fatalf("expected failed, got %s", session.Phase)
	}
	if session.FailedStage != "topic_extraction" {
		t.Errorf("expected topic_extraction stage, got %q", session.FailedStage)
	}
	if session.FailureReason == "" {
		t.Error("failure reason must be recorded")
	}
}

func TestPrepareEmptyResumeFails(t *testing.T) {
	provider := &pipelineLLM{topicJSON: defaultTopicJSON(), reportJSON: reportJSON}
	env := newTestEnv(provider)
	ctx := context.Background()

	session := &entity.InterviewSession{
		Id:             uuid.New(),
		CandidateName:  "Alex",
		JobDescription: "Senior Backend Engineer, Python, leadership, payments. Plus boilerplate.",
		ResumeText:     "   ",
		Phase:          entity.PhaseCreated,
		CreatedAt:      time.Now(),
	}
	if err := env.sessions.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := env.orchestrator.Prepare(ctx, session.Id); err == nil {
		t.Fatal("expected failure for empty resume")
	}

	stored, err := env.sessions.FindById(ctx, session.Id)
	if err != nil {
		t.Fatalf("FindById: %v", err)
	}
	if stored.Phase != entity.PhaseFailed {
		t.Fatalf("expected failed, got %s", stored.Phase)
	}
	if stored.FailedStage != "preprocessing" {
		t.Errorf("expected preprocessing stage, got %q", stored.FailedStage)
	}
}

func TestPrepareSkipsNonCreatedSession(t *testing.T) {
	provider := &pipelineLLM{topicJSON: defaultTopicJSON(), reportJSON: reportJSON}
	env := newTestEnv(provider)
	sessionId := createSession(t, env)
	ctx := context.Background()

	if err := env.orchestrator.Prepare(ctx, sessionId); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	// Duplicate delivery: the phase guard must make this a no-op.
	if err := env.orchestrator.Prepare(ctx, sessionId); err != nil {
		t.Fatalf("duplicate Prepare must be a no-op, got: %v", err)
	}

	topicList, err := env.sessions.FindTopics(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindTopics: %v", err)
	}
	if len(topicList) != len(testTopics) {
		t.Fatalf("duplicate run must not append topics, got %d", len(topicList))
	}
}

func TestEvaluateCompletesSession(t *testing.T) {
	provider := &pipelineLLM{topicJSON: defaultTopicJSON(), reportJSON: reportJSON}
	env := newTestEnv(provider)
	sessionId := createSession(t, env)
	ctx := context.Background()

	if err := env.orchestrator.Prepare(ctx, sessionId); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	questionList, err := env.sessions.FindQuestions(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindQuestions: %v", err)
	}
	responses := make([]*entity.Response, len(questionList))
	for i, q := range questionList {
		responses[i] = &entity.Response{
			Id:          uuid.New(),
			QuestionId:  q.Id,
			SessionId:   sessionId,
			AnswerText:  "A thorough answer.",
			SubmittedAt: time.Now(),
		}
	}
	if err := env.sessions.AppendResponses(ctx, responses); err != nil {
		t.Fatalf("AppendResponses: %v", err)
	}
	ok, err := env.sessions.UpdatePhase(ctx, sessionId, entity.PhaseAwaitingResponses, entity.PhaseEvaluating)
	if err != nil || !ok {
		t.Fatalf("UpdatePhase: ok=%v err=%v", ok, err)
	}

	if err := env.orchestrator.Evaluate(ctx, sessionId); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	session, err := env.sessions.FindById(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindById: %v", err)
	}
	if session.Phase != entity.PhaseCompleted {
		t.Fatalf("expected completed, got %s", session.Phase)
	}

	report, err := env.sessions.FindReport(ctx, sessionId)
	if err != nil {
		t.Fatalf("FindReport: %v", err)
	}
	if report == nil {
		t.Fatal("report must be persisted")
	}
	if report.Summary == "" || len(report.Strengths) == 0 || len(report.Weaknesses) == 0 {
		t.Error("report must carry summary, strengths and weaknesses")
	}
}
