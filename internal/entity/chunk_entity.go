package entity

import (
	"time"

	"github.com/google/uuid"
)

// ResumeChunk is one embedded segment of an ingested resume. Chunks are
// immutable and live exactly as long as their session.
type ResumeChunk struct {
	Id             uuid.UUID
	SessionId      uuid.UUID
	Content        string
	SequenceIndex  int
	EmbeddingValue []float32
	CreatedAt      time.Time
}
