package retrieval

import (
	"context"
	"strings"
	"time"

	"ai-interview-coach-be/internal/apperror"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/internal/repository/contract"
	"ai-interview-coach-be/pkg/embedding"
	"ai-interview-coach-be/pkg/utils"

	"github.com/google/uuid"
)

// Config encapsulates retrieval parameters
type Config struct {
	TopK           int
	ContextBudget  int // max characters assembled into one context block
	CallTimeout    time.Duration
	MaxCallRetries int
}

func DefaultConfig() Config {
	return Config{
		TopK:           4,
		ContextBudget:  4000,
		CallTimeout:    60 * time.Second,
		MaxCallRetries: 3,
	}
}

// Service grounds an interview topic in the candidate's resume. It embeds the
// topic label, runs a session-scoped similarity search, and assembles the
// hits into a single bounded context block.
type Service struct {
	embeddingProvider embedding.EmbeddingProvider
	chunkRepository   contract.ResumeChunkRepository
	logger            logger.ILogger
	config            Config
}

func NewService(
	embeddingProvider embedding.EmbeddingProvider,
	chunkRepository contract.ResumeChunkRepository,
	log logger.ILogger,
	config Config,
) *Service {
	if config.TopK <= 0 {
		config.TopK = 4
	}
	return &Service{
		embeddingProvider: embeddingProvider,
		chunkRepository:   chunkRepository,
		logger:            log,
		config:            config,
	}
}

// RetrieveContext returns the assembled resume context for a topic. An empty
// string means the session has no relevant chunks; the caller decides what
// placeholder to substitute.
func (s *Service) RetrieveContext(ctx context.Context, sessionId uuid.UUID, topic string) (string, error) {
	var embedResp *embedding.EmbeddingResponse
	err := utils.WithRetry(ctx, s.config.CallTimeout, s.config.MaxCallRetries, func(callCtx context.Context) error {
		resp, callErr := s.embeddingProvider.Generate(callCtx, topic, "RETRIEVAL_QUERY")
		if callErr != nil {
			return callErr
		}
		embedResp = resp
		return nil
	})
	if err != nil {
		s.logger.Error("retrieval", "Topic embedding failed after retries", map[string]interface{}{
			"session_id": sessionId.String(),
			"topic":      topic,
			"error":      err.Error(),
		})
		return "", apperror.Wrap(apperror.KindExternalCall, apperror.StageQuestionGen,
			apperror.ErrEmbeddingUnavailable.Error(), apperror.ErrEmbeddingUnavailable)
	}

	scored, err := s.chunkRepository.SearchSimilarWithScore(ctx, sessionId, embedResp.Embedding.Values, s.config.TopK)
	if err != nil {
		return "", err
	}
	if len(scored) == 0 {
		s.logger.Debug("retrieval", "No resume chunks found for topic", map[string]interface{}{
			"session_id": sessionId.String(),
			"topic":      topic,
		})
		return "", nil
	}

	return s.assemble(scored), nil
}

// assemble joins chunk contents under the character budget. Lowest-ranked
// chunks drop out first. If even the best chunk alone busts the budget it is
// truncated rather than dropped, so the generator never starves when a
// relevant chunk exists.
func (s *Service) assemble(scored []*contract.ScoredResumeChunk) string {
	budget := s.config.ContextBudget
	if budget <= 0 {
		parts := make([]string, len(scored))
		for i, sc := range scored {
			parts[i] = sc.Chunk.Content
		}
		return strings.Join(parts, "\n\n")
	}

	var parts []string
	used := 0
	for i, sc := range scored {
		content := sc.Chunk.Content
		// Budget is counted in runes, matching the truncation below.
		cost := len([]rune(content))
		if len(parts) > 0 {
			cost += 2 // separator
		}
		if used+cost > budget {
			if i == 0 {
				runes := []rune(content)
				if len(runes) > budget {
					runes = runes[:budget]
				}
				parts = append(parts, string(runes))
			}
			break
		}
		parts = append(parts, content)
		used += cost
	}

	return strings.Join(parts, "\n\n")
}
