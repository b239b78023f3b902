package implementation

import (
	"context"

	"ai-interview-coach-be/internal/mapper"
	"ai-interview-coach-be/internal/model"
	"ai-interview-coach-be/internal/repository/contract"

	"ai-interview-coach-be/internal/entity"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ResumeChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResumeChunkMapper
}

func NewResumeChunkRepository(db *gorm.DB) contract.ResumeChunkRepository {
	return &ResumeChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewResumeChunkMapper(),
	}
}

func (r *ResumeChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.ResumeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.ResumeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *ResumeChunkRepositoryImpl) CountBySessionId(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ResumeChunk{}).
		Where("session_id = ?", sessionId).
		Count(&count).Error
	return count, err
}

func (r *ResumeChunkRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ResumeChunk{}).Error
}

func (r *ResumeChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, sessionId uuid.UUID, embedding []float32, limit int) ([]*contract.ScoredResumeChunk, error) {
	if limit <= 0 {
		limit = 4
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.ResumeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("resume_chunks").
		Select("resume_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("session_id = ?", sessionId).
		Order("similarity DESC, sequence_index ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredResumeChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredResumeChunk{
			Chunk:      r.mapper.ToEntity(&res.ResumeChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
