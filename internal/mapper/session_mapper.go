package mapper

import (
	"encoding/json"

	"ai-interview-coach-be/internal/entity"
	"ai-interview-coach-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToModel(e *entity.InterviewSession) *model.InterviewSession {
	return &model.InterviewSession{
		Id:             e.Id,
		CandidateName:  e.CandidateName,
		JobDescription: e.JobDescription,
		CleanedJD:      e.CleanedJD,
		ResumeText:     e.ResumeText,
		Phase:          string(e.Phase),
		FailedStage:    e.FailedStage,
		FailureReason:  e.FailureReason,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (m *SessionMapper) ToEntity(mo *model.InterviewSession) *entity.InterviewSession {
	return &entity.InterviewSession{
		Id:             mo.Id,
		CandidateName:  mo.CandidateName,
		JobDescription: mo.JobDescription,
		CleanedJD:      mo.CleanedJD,
		ResumeText:     mo.ResumeText,
		Phase:          entity.Phase(mo.Phase),
		FailedStage:    mo.FailedStage,
		FailureReason:  mo.FailureReason,
		CreatedAt:      mo.CreatedAt,
		UpdatedAt:      mo.UpdatedAt,
	}
}

func (m *SessionMapper) TopicToModel(e *entity.Topic) *model.InterviewTopic {
	return &model.InterviewTopic{
		Id:        e.Id,
		SessionId: e.SessionId,
		Label:     e.Label,
		Ordinal:   e.Ordinal,
		CreatedAt: e.CreatedAt,
	}
}

func (m *SessionMapper) TopicToEntity(mo *model.InterviewTopic) *entity.Topic {
	return &entity.Topic{
		Id:        mo.Id,
		SessionId: mo.SessionId,
		Label:     mo.Label,
		Ordinal:   mo.Ordinal,
		CreatedAt: mo.CreatedAt,
	}
}

func (m *SessionMapper) QuestionToModel(e *entity.Question) *model.InterviewQuestion {
	return &model.InterviewQuestion{
		Id:        e.Id,
		TopicId:   e.TopicId,
		SessionId: e.SessionId,
		Text:      e.Text,
		Ordinal:   e.Ordinal,
		CreatedAt: e.CreatedAt,
	}
}

func (m *SessionMapper) QuestionToEntity(mo *model.InterviewQuestion) *entity.Question {
	return &entity.Question{
		Id:        mo.Id,
		TopicId:   mo.TopicId,
		SessionId: mo.SessionId,
		Text:      mo.Text,
		Ordinal:   mo.Ordinal,
		CreatedAt: mo.CreatedAt,
	}
}

func (m *SessionMapper) ResponseToModel(e *entity.Response) *model.InterviewResponse {
	return &model.InterviewResponse{
		Id:          e.Id,
		QuestionId:  e.QuestionId,
		SessionId:   e.SessionId,
		AnswerText:  e.AnswerText,
		SubmittedAt: e.SubmittedAt,
	}
}

func (m *SessionMapper) ResponseToEntity(mo *model.InterviewResponse) *entity.Response {
	return &entity.Response{
		Id:          mo.Id,
		QuestionId:  mo.QuestionId,
		SessionId:   mo.SessionId,
		AnswerText:  mo.AnswerText,
		SubmittedAt: mo.SubmittedAt,
	}
}

func (m *SessionMapper) ReportToModel(e *entity.EvaluationReport) *model.EvaluationReport {
	strengths, _ := json.Marshal(e.Strengths)
	weaknesses, _ := json.Marshal(e.Weaknesses)
	recommendations, _ := json.Marshal(e.Recommendations)
	return &model.EvaluationReport{
		Id:              e.Id,
		SessionId:       e.SessionId,
		Summary:         e.Summary,
		Strengths:       datatypes.JSON(strengths),
		Weaknesses:      datatypes.JSON(weaknesses),
		Recommendations: datatypes.JSON(recommendations),
		CreatedAt:       e.CreatedAt,
	}
}

func (m *SessionMapper) ReportToEntity(mo *model.EvaluationReport) *entity.EvaluationReport {
	e := &entity.EvaluationReport{
		Id:        mo.Id,
		SessionId: mo.SessionId,
		Summary:   mo.Summary,
		CreatedAt: mo.CreatedAt,
	}
	_ = json.Unmarshal(mo.Strengths, &e.Strengths)
	_ = json.Unmarshal(mo.Weaknesses, &e.Weaknesses)
	_ = json.Unmarshal(mo.Recommendations, &e.Recommendations)
	return e
}
