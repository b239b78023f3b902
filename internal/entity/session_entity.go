package entity

import (
	"time"

	"github.com/google/uuid"
)

type InterviewSession struct {
	Id             uuid.UUID
	CandidateName  string
	JobDescription string // raw, as submitted
	CleanedJD      string // set by the preprocessing branch
	ResumeText     string
	Phase          Phase
	FailedStage    string // populated only when Phase == failed
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

type Topic struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Label     string
	Ordinal   int
	CreatedAt time.Time
}

type Question struct {
	Id        uuid.UUID
	TopicId   uuid.UUID
	SessionId uuid.UUID
	Text      string
	Ordinal   int // position within the topic
	CreatedAt time.Time
}

type Response struct {
	Id          uuid.UUID
	QuestionId  uuid.UUID
	SessionId   uuid.UUID
	AnswerText  string
	SubmittedAt time.Time
}
