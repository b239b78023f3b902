package contract

import (
	"context"

	"ai-interview-coach-be/internal/entity"

	"github.com/google/uuid"
)

// SessionRepository persists the session aggregate. All writes are append-only
// or guarded phase updates; child rows are never mutated in place.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.InterviewSession) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.InterviewSession, error)

	// UpdatePhase applies from -> to only if the stored phase still equals
	// from. Returns false when the guard fails, which keeps concurrent
	// writers single-file without a lock on the row.
	UpdatePhase(ctx context.Context, id uuid.UUID, from, to entity.Phase) (bool, error)
	SetCleanedJD(ctx context.Context, id uuid.UUID, cleaned string) error
	// SetFailure moves the session to the failed phase recording the failing
	// stage and reason. No-op when the session is already terminal.
	SetFailure(ctx context.Context, id uuid.UUID, stage, reason string) error

	AppendTopics(ctx context.Context, topics []*entity.Topic) error
	AppendQuestions(ctx context.Context, questions []*entity.Question) error
	AppendResponses(ctx context.Context, responses []*entity.Response) error
	SetReport(ctx context.Context, report *entity.EvaluationReport) error

	FindTopics(ctx context.Context, sessionId uuid.UUID) ([]*entity.Topic, error)
	FindQuestions(ctx context.Context, sessionId uuid.UUID) ([]*entity.Question, error)
	FindResponses(ctx context.Context, sessionId uuid.UUID) ([]*entity.Response, error)
	FindReport(ctx context.Context, sessionId uuid.UUID) (*entity.EvaluationReport, error)

	// Delete removes the session and all owned child rows.
	Delete(ctx context.Context, sessionId uuid.UUID) error
}
