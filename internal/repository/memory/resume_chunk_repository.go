package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"ai-interview-coach-be/internal/entity"
	"ai-interview-coach-be/internal/repository/contract"

	"github.com/google/uuid"
)

// ResumeChunkRepository keeps chunk embeddings in memory and computes cosine
// similarity exactly. Ordering matches the pgvector implementation:
// similarity descending, sequence index ascending on ties.
type ResumeChunkRepository struct {
	mu     sync.RWMutex
	chunks map[uuid.UUID][]*entity.ResumeChunk
}

func NewResumeChunkRepository() *ResumeChunkRepository {
	return &ResumeChunkRepository{
		chunks: make(map[uuid.UUID][]*entity.ResumeChunk),
	}
}

var _ contract.ResumeChunkRepository = (*ResumeChunkRepository)(nil)

func (r *ResumeChunkRepository) CreateBulk(_ context.Context, chunks []*entity.ResumeChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range chunks {
		cp := *c
		r.chunks[c.SessionId] = append(r.chunks[c.SessionId], &cp)
	}
	return nil
}

func (r *ResumeChunkRepository) CountBySessionId(_ context.Context, sessionId uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.chunks[sessionId])), nil
}

func (r *ResumeChunkRepository) DeleteBySessionId(_ context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chunks, sessionId)
	return nil
}

func (r *ResumeChunkRepository) SearchSimilarWithScore(_ context.Context, sessionId uuid.UUID, embedding []float32, limit int) ([]*contract.ScoredResumeChunk, error) {
	if limit <= 0 {
		limit = 4
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	scored := make([]*contract.ScoredResumeChunk, 0, len(r.chunks[sessionId]))
	for _, c := range r.chunks[sessionId] {
		scored = append(scored, &contract.ScoredResumeChunk{
			Chunk:      c,
			Similarity: cosineSimilarity(embedding, c.EmbeddingValue),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Chunk.SequenceIndex < scored[j].Chunk.SequenceIndex
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
