package implementation

import (
	"context"
	"errors"
	"time"

	"ai-interview-coach-be/internal/entity"
	"ai-interview-coach-be/internal/mapper"
	"ai-interview-coach-be/internal/model"
	"ai-interview-coach-be/internal/repository/contract"
	"ai-interview-coach-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.InterviewSession) error {
	m := r.mapper.ToModel(session)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *SessionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.InterviewSession, error) {
	var m model.InterviewSession
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SessionRepositoryImpl) UpdatePhase(ctx context.Context, id uuid.UUID, from, to entity.Phase) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.InterviewSession{}).
		Where("id = ? AND phase = ?", id, string(from)).
		Updates(map[string]interface{}{"phase": string(to), "updated_at": &now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SessionRepositoryImpl) SetCleanedJD(ctx context.Context, id uuid.UUID, cleaned string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.InterviewSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"cleaned_jd": cleaned, "updated_at": &now}).Error
}

func (r *SessionRepositoryImpl) SetFailure(ctx context.Context, id uuid.UUID, stage, reason string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.InterviewSession{}).
		Where("id = ? AND phase NOT IN ?", id, []string{string(entity.PhaseCompleted), string(entity.PhaseFailed)}).
		Updates(map[string]interface{}{
			"phase":          string(entity.PhaseFailed),
			"failed_stage":   stage,
			"failure_reason": reason,
			"updated_at":     &now,
		}).Error
}

func (r *SessionRepositoryImpl) AppendTopics(ctx context.Context, topics []*entity.Topic) error {
	if len(topics) == 0 {
		return nil
	}
	models := make([]*model.InterviewTopic, len(topics))
	for i, t := range topics {
		models[i] = r.mapper.TopicToModel(t)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *SessionRepositoryImpl) AppendQuestions(ctx context.Context, questions []*entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	models := make([]*model.InterviewQuestion, len(questions))
	for i, q := range questions {
		models[i] = r.mapper.QuestionToModel(q)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *SessionRepositoryImpl) AppendResponses(ctx context.Context, responses []*entity.Response) error {
	if len(responses) == 0 {
		return nil
	}
	models := make([]*model.InterviewResponse, len(responses))
	for i, resp := range responses {
		models[i] = r.mapper.ResponseToModel(resp)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *SessionRepositoryImpl) SetReport(ctx context.Context, report *entity.EvaluationReport) error {
	return r.db.WithContext(ctx).Create(r.mapper.ReportToModel(report)).Error
}

func (r *SessionRepositoryImpl) FindTopics(ctx context.Context, sessionId uuid.UUID) ([]*entity.Topic, error) {
	var models []*model.InterviewTopic
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "ordinal"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	topics := make([]*entity.Topic, len(models))
	for i, m := range models {
		topics[i] = r.mapper.TopicToEntity(m)
	}
	return topics, nil
}

func (r *SessionRepositoryImpl) FindQuestions(ctx context.Context, sessionId uuid.UUID) ([]*entity.Question, error) {
	var models []*model.InterviewQuestion
	// Curated order: topic ordinal first, then the question's position in it.
	err := r.db.WithContext(ctx).
		Table("interview_questions").
		Joins("JOIN interview_topics ON interview_topics.id = interview_questions.topic_id").
		Where("interview_questions.session_id = ?", sessionId).
		Order("interview_topics.ordinal ASC, interview_questions.ordinal ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	questions := make([]*entity.Question, len(models))
	for i, m := range models {
		questions[i] = r.mapper.QuestionToEntity(m)
	}
	return questions, nil
}

func (r *SessionRepositoryImpl) FindResponses(ctx context.Context, sessionId uuid.UUID) ([]*entity.Response, error) {
	var models []*model.InterviewResponse
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "submitted_at"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	responses := make([]*entity.Response, len(models))
	for i, m := range models {
		responses[i] = r.mapper.ResponseToEntity(m)
	}
	return responses, nil
}

func (r *SessionRepositoryImpl) FindReport(ctx context.Context, sessionId uuid.UUID) (*entity.EvaluationReport, error) {
	var m model.EvaluationReport
	query := r.applySpecifications(r.db.WithContext(ctx), specification.BySessionID{SessionID: sessionId})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ReportToEntity(&m), nil
}

func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionId uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("session_id = ?", sessionId).Delete(&model.EvaluationReport{}).Error; err != nil {
		return err
	}
	if err := db.Where("session_id = ?", sessionId).Delete(&model.InterviewResponse{}).Error; err != nil {
		return err
	}
	if err := db.Where("session_id = ?", sessionId).Delete(&model.InterviewQuestion{}).Error; err != nil {
		return err
	}
	if err := db.Where("session_id = ?", sessionId).Delete(&model.InterviewTopic{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.InterviewSession{}, sessionId).Error
}
