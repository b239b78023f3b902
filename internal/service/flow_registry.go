package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FlowRegistry tracks the cancel functions of in-flight pipeline runs so a
// session delete can tear its pipeline down instead of racing it.
type FlowRegistry struct {
	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

func NewFlowRegistry() *FlowRegistry {
	return &FlowRegistry{
		cancels: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Register derives a cancellable context for a session's pipeline run. The
// returned release must be called when the run finishes.
func (r *FlowRegistry) Register(ctx context.Context, sessionId uuid.UUID) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	// A stale entry means a previous run for this session is still winding
	// down; cancel it so there is never more than one writer.
	if old, ok := r.cancels[sessionId]; ok {
		old()
	}
	r.cancels[sessionId] = cancel
	r.mu.Unlock()

	release := func() {
		r.mu.Lock()
		delete(r.cancels, sessionId)
		r.mu.Unlock()
		cancel()
	}
	return runCtx, release
}

// Cancel aborts the session's in-flight run, if any.
func (r *FlowRegistry) Cancel(sessionId uuid.UUID) {
	r.mu.Lock()
	cancel, ok := r.cancels[sessionId]
	if ok {
		delete(r.cancels, sessionId)
	}
	r.mu.Unlock()

	if ok {
		cancel()
	}
}
