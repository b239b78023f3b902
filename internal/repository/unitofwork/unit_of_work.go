package unitofwork

import (
	"context"

	"ai-interview-coach-be/internal/repository/contract"
)

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	ResumeChunkRepository() contract.ResumeChunkRepository
}
