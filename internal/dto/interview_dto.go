package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	CandidateName  string `json:"candidate_name"`
	JobDescription string `json:"job_description" validate:"required,min=50"`
	ResumeText     string `json:"resume_text" validate:"required"`
}

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Phase string    `json:"phase"`
}

type QuestionItem struct {
	Id      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Ordinal int       `json:"ordinal"`
}

// TopicItem carries its questions inline. An empty questions list on a
// session past generating_questions means that topic's generation failed.
type TopicItem struct {
	Id        uuid.UUID      `json:"id"`
	Label     string         `json:"label"`
	Ordinal   int            `json:"ordinal"`
	Questions []QuestionItem `json:"questions"`
}

type ShowSessionResponse struct {
	Id            uuid.UUID   `json:"id"`
	CandidateName string      `json:"candidate_name"`
	Phase         string      `json:"phase"`
	Topics        []TopicItem `json:"topics"`
	FailedStage   string      `json:"failed_stage,omitempty"`
	FailureReason string      `json:"failure_reason,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     *time.Time  `json:"updated_at"`
}

type ResponseItem struct {
	QuestionId uuid.UUID `json:"question_id" validate:"required"`
	AnswerText string    `json:"answer_text" validate:"required"`
}

type SubmitResponsesRequest struct {
	Id        uuid.UUID
	Responses []ResponseItem `json:"responses" validate:"required,min=1,dive"`
}

type SubmitResponsesResponse struct {
	Id    uuid.UUID `json:"id"`
	Phase string    `json:"phase"`
}

type TranscriptEntry struct {
	QuestionId uuid.UUID `json:"question_id"`
	Topic      string    `json:"topic"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer,omitempty"`
}

type ShowTranscriptResponse struct {
	Id      uuid.UUID         `json:"id"`
	Phase   string            `json:"phase"`
	Entries []TranscriptEntry `json:"entries"`
}

type ShowEvaluationResponse struct {
	Id              uuid.UUID `json:"session_id"`
	Summary         string    `json:"summary"`
	Strengths       []string  `json:"strengths"`
	Weaknesses      []string  `json:"weaknesses"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
}

// Standalone evaluation, no session involved.

type EvaluateTranscriptEntry struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type EvaluateTranscriptRequest struct {
	JobDescription string                    `json:"job_description" validate:"required,min=50"`
	Transcript     []EvaluateTranscriptEntry `json:"transcript" validate:"required,min=1,dive"`
}

type EvaluateTranscriptResponse struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Async pipeline messages

type PublishPrepareSessionMessage struct {
	SessionId uuid.UUID `json:"session_id"`
}

type PublishEvaluateSessionMessage struct {
	SessionId uuid.UUID `json:"session_id"`
}
