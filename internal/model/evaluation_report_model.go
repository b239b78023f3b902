package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EvaluationReport struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionId       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Summary         string         `gorm:"type:text"`
	Strengths       datatypes.JSON `gorm:"type:jsonb"`
	Weaknesses      datatypes.JSON `gorm:"type:jsonb"`
	Recommendations datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
}

func (EvaluationReport) TableName() string {
	return "evaluation_reports"
}
