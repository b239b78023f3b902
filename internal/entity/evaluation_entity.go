package entity

import (
	"time"

	"github.com/google/uuid"
)

type EvaluationReport struct {
	Id              uuid.UUID
	SessionId       uuid.UUID
	Summary         string
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
	CreatedAt       time.Time
}
