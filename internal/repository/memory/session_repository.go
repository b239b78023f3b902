package memory

import (
	"context"
	"sync"
	"time"

	"ai-interview-coach-be/internal/entity"
	"ai-interview-coach-be/internal/repository/contract"

	"github.com/google/uuid"
)

// SessionRepository is an in-memory SessionRepository used by tests and
// DB-less development runs. A single mutex serializes phase transitions per
// the single-writer discipline; appends for different sessions never contend
// longer than the map insert.
type SessionRepository struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*entity.InterviewSession
	topics    map[uuid.UUID][]*entity.Topic
	questions map[uuid.UUID][]*entity.Question
	responses map[uuid.UUID][]*entity.Response
	reports   map[uuid.UUID]*entity.EvaluationReport
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions:  make(map[uuid.UUID]*entity.InterviewSession),
		topics:    make(map[uuid.UUID][]*entity.Topic),
		questions: make(map[uuid.UUID][]*entity.Question),
		responses: make(map[uuid.UUID][]*entity.Response),
		reports:   make(map[uuid.UUID]*entity.EvaluationReport),
	}
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(_ context.Context, session *entity.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.Id] = &cp
	return nil
}

func (r *SessionRepository) FindById(_ context.Context, id uuid.UUID) (*entity.InterviewSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepository) UpdatePhase(_ context.Context, id uuid.UUID, from, to entity.Phase) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Phase != from {
		return false, nil
	}
	now := time.Now()
	s.Phase = to
	s.UpdatedAt = &now
	return true, nil
}

func (r *SessionRepository) SetCleanedJD(_ context.Context, id uuid.UUID, cleaned string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		now := time.Now()
		s.CleanedJD = cleaned
		s.UpdatedAt = &now
	}
	return nil
}

func (r *SessionRepository) SetFailure(_ context.Context, id uuid.UUID, stage, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Phase.IsTerminal() {
		return nil
	}
	now := time.Now()
	s.Phase = entity.PhaseFailed
	s.FailedStage = stage
	s.FailureReason = reason
	s.UpdatedAt = &now
	return nil
}

func (r *SessionRepository) AppendTopics(_ context.Context, topics []*entity.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range topics {
		cp := *t
		r.topics[t.SessionId] = append(r.topics[t.SessionId], &cp)
	}
	return nil
}

func (r *SessionRepository) AppendQuestions(_ context.Context, questions []*entity.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range questions {
		cp := *q
		r.questions[q.SessionId] = append(r.questions[q.SessionId], &cp)
	}
	return nil
}

func (r *SessionRepository) AppendResponses(_ context.Context, responses []*entity.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range responses {
		cp := *resp
		r.responses[resp.SessionId] = append(r.responses[resp.SessionId], &cp)
	}
	return nil
}

func (r *SessionRepository) SetReport(_ context.Context, report *entity.EvaluationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *report
	r.reports[report.SessionId] = &cp
	return nil
}

func (r *SessionRepository) FindTopics(_ context.Context, sessionId uuid.UUID) ([]*entity.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]*entity.Topic, len(r.topics[sessionId]))
	copy(topics, r.topics[sessionId])
	sortTopics(topics)
	return topics, nil
}

func (r *SessionRepository) FindQuestions(_ context.Context, sessionId uuid.UUID) ([]*entity.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	questions := make([]*entity.Question, len(r.questions[sessionId]))
	copy(questions, r.questions[sessionId])
	r.sortQuestionsByTopicOrder(sessionId, questions)
	return questions, nil
}

func (r *SessionRepository) FindResponses(_ context.Context, sessionId uuid.UUID) ([]*entity.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	responses := make([]*entity.Response, len(r.responses[sessionId]))
	copy(responses, r.responses[sessionId])
	return responses, nil
}

func (r *SessionRepository) FindReport(_ context.Context, sessionId uuid.UUID) (*entity.EvaluationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[sessionId]
	if !ok {
		return nil, nil
	}
	cp := *rep
	return &cp, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionId)
	delete(r.topics, sessionId)
	delete(r.questions, sessionId)
	delete(r.responses, sessionId)
	delete(r.reports, sessionId)
	return nil
}
