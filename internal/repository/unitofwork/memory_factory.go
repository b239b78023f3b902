package unitofwork

import (
	"context"

	"ai-interview-coach-be/internal/repository/contract"
	"ai-interview-coach-be/internal/repository/memory"
)

// MemoryRepositoryFactory backs the unit of work with in-memory stores. Used
// by tests and DB-less development runs; Begin/Commit/Rollback are no-ops
// since the memory repositories apply writes immediately.
type MemoryRepositoryFactory struct {
	sessions *memory.SessionRepository
	chunks   *memory.ResumeChunkRepository
}

func NewMemoryRepositoryFactory() *MemoryRepositoryFactory {
	return &MemoryRepositoryFactory{
		sessions: memory.NewSessionRepository(),
		chunks:   memory.NewResumeChunkRepository(),
	}
}

func (f *MemoryRepositoryFactory) NewUnitOfWork(_ context.Context) UnitOfWork {
	return &memoryUnitOfWork{factory: f}
}

type memoryUnitOfWork struct {
	factory *MemoryRepositoryFactory
}

func (u *memoryUnitOfWork) Begin(_ context.Context) error { return nil }
func (u *memoryUnitOfWork) Commit() error                 { return nil }
func (u *memoryUnitOfWork) Rollback() error               { return nil }

func (u *memoryUnitOfWork) SessionRepository() contract.SessionRepository {
	return u.factory.sessions
}

func (u *memoryUnitOfWork) ResumeChunkRepository() contract.ResumeChunkRepository {
	return u.factory.chunks
}
