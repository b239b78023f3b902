package mapper

import (
	"ai-interview-coach-be/internal/entity"
	"ai-interview-coach-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ResumeChunkMapper struct{}

func NewResumeChunkMapper() *ResumeChunkMapper {
	return &ResumeChunkMapper{}
}

func (m *ResumeChunkMapper) ToModel(e *entity.ResumeChunk) *model.ResumeChunk {
	return &model.ResumeChunk{
		Id:             e.Id,
		SessionId:      e.SessionId,
		Content:        e.Content,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		SequenceIndex:  e.SequenceIndex,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *ResumeChunkMapper) ToEntity(mo *model.ResumeChunk) *entity.ResumeChunk {
	return &entity.ResumeChunk{
		Id:             mo.Id,
		SessionId:      mo.SessionId,
		Content:        mo.Content,
		EmbeddingValue: mo.EmbeddingValue.Slice(),
		SequenceIndex:  mo.SequenceIndex,
		CreatedAt:      mo.CreatedAt,
	}
}
