package contract

import (
	"context"

	"ai-interview-coach-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredResumeChunk wraps ResumeChunk with its similarity score
type ScoredResumeChunk struct {
	Chunk      *entity.ResumeChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// ResumeChunkRepository is the per-session vector partition. Queries never
// cross session boundaries; an unknown session yields an empty result.
type ResumeChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.ResumeChunk) error
	CountBySessionId(ctx context.Context, sessionId uuid.UUID) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error

	// SearchSimilarWithScore returns up to limit chunks ordered by descending
	// cosine similarity; ties break on ascending sequence index.
	SearchSimilarWithScore(ctx context.Context, sessionId uuid.UUID, embedding []float32, limit int) ([]*ScoredResumeChunk, error)
}
