package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ResumeChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	SequenceIndex  int             `gorm:"default:0"`        // 0-based ingestion order
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (ResumeChunk) TableName() string {
	return "resume_chunks"
}
