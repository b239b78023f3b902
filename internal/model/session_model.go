package model

import (
	"time"

	"github.com/google/uuid"
)

type InterviewSession struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CandidateName  string
	JobDescription string `gorm:"type:text"`
	CleanedJD      string `gorm:"type:text"`
	ResumeText     string `gorm:"type:text"`
	Phase          string `gorm:"index"`
	FailedStage    string
	FailureReason  string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

type InterviewTopic struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Label     string
	Ordinal   int
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (InterviewTopic) TableName() string {
	return "interview_topics"
}

type InterviewQuestion struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TopicId   uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Text      string    `gorm:"type:text"`
	Ordinal   int
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}

type InterviewResponse struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	QuestionId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SessionId   uuid.UUID `gorm:"type:uuid;not null;index"`
	AnswerText  string    `gorm:"type:text"`
	SubmittedAt time.Time
}

func (InterviewResponse) TableName() string {
	return "interview_responses"
}
