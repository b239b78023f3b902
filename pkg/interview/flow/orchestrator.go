package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-interview-coach-be/internal/apperror"
	"ai-interview-coach-be/internal/constant"
	"ai-interview-coach-be/internal/entity"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/internal/repository/contract"
	"ai-interview-coach-be/pkg/embedding"
	"ai-interview-coach-be/pkg/interview/evaluation"
	"ai-interview-coach-be/pkg/interview/questions"
	"ai-interview-coach-be/pkg/interview/topics"
	"ai-interview-coach-be/pkg/llm"
	"ai-interview-coach-be/pkg/textsplit"
	"ai-interview-coach-be/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Config encapsulates the flow-level knobs
type Config struct {
	ChunkSize               int
	ChunkOverlap            int
	MaxConcurrentTopicTasks int
	CallTimeout             time.Duration
	MaxCallRetries          int
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:               1000,
		ChunkOverlap:            200,
		MaxConcurrentTopicTasks: 5,
		CallTimeout:             60 * time.Second,
		MaxCallRetries:          3,
	}
}

// Orchestrator drives a session through the preparation and evaluation
// pipelines. It is the single writer of session phase while a pipeline runs;
// API handlers only read until the flow hands the session back in
// awaiting_responses.
type Orchestrator struct {
	sessionRepository contract.SessionRepository
	chunkRepository   contract.ResumeChunkRepository
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	topicExtractor    *topics.Extractor
	questionGenerator *questions.Generator
	evaluator         *evaluation.Evaluator
	logger            logger.ILogger
	config            Config
}

func NewOrchestrator(
	sessionRepository contract.SessionRepository,
	chunkRepository contract.ResumeChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	topicExtractor *topics.Extractor,
	questionGenerator *questions.Generator,
	evaluator *evaluation.Evaluator,
	log logger.ILogger,
	config Config,
) *Orchestrator {
	if config.MaxConcurrentTopicTasks <= 0 {
		config.MaxConcurrentTopicTasks = 5
	}
	return &Orchestrator{
		sessionRepository: sessionRepository,
		chunkRepository:   chunkRepository,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		topicExtractor:    topicExtractor,
		questionGenerator: questionGenerator,
		evaluator:         evaluator,
		logger:            log,
		config:            config,
	}
}

// Prepare runs the preparation pipeline: preprocessing and ingestion in
// parallel, then topic extraction, then the bounded per-topic question
// fan-out, leaving the session in awaiting_responses. Any fatal error marks
// the session failed with the stage it died in.
func (o *Orchestrator) Prepare(ctx context.Context, sessionId uuid.UUID) error {
	session, err := o.sessionRepository.FindById(ctx, sessionId)
	if err != nil {
		return err
	}
	if session == nil {
		// Deleted before the message arrived; nothing to prepare.
		o.logger.Warn("flow", "Preparation skipped, session no longer exists", map[string]interface{}{
			"session_id": sessionId.String(),
		})
		return nil
	}

	ok, err := o.sessionRepository.UpdatePhase(ctx, sessionId, entity.PhaseCreated, entity.PhasePreprocessing)
	if err != nil {
		return err
	}
	if !ok {
		// Duplicate delivery or a concurrent writer got here first.
		o.logger.Warn("flow", "Preparation skipped, session not in created phase", map[string]interface{}{
			"session_id": sessionId.String(),
		})
		return nil
	}

	o.logger.Info("flow", "Preparation started", map[string]interface{}{
		"session_id": sessionId.String(),
		"candidate":  session.CandidateName,
	})

	// Two independent branches. Both must land before topic extraction;
	// either failing after its retries kills the session.
	var cleanedJD string
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cleaned, branchErr := o.cleanJobDescription(gCtx, session.JobDescription)
		if branchErr != nil {
			return branchErr
		}
		cleanedJD = cleaned
		return o.sessionRepository.SetCleanedJD(gCtx, sessionId, cleaned)
	})
	g.Go(func() error {
		return o.ingestResume(gCtx, sessionId, session.ResumeText)
	})
	if err := g.Wait(); err != nil {
		return o.fail(ctx, sessionId, err)
	}

	topicLabels, err := o.topicExtractor.Extract(ctx, cleanedJD)
	if err != nil {
		return o.fail(ctx, sessionId, err)
	}

	topicEntities := make([]*entity.Topic, len(topicLabels))
	for i, label := range topicLabels {
		topicEntities[i] = &entity.Topic{
			Id:        uuid.New(),
			SessionId: sessionId,
			Label:     label,
			Ordinal:   i,
			CreatedAt: time.Now(),
		}
	}
	if err := o.sessionRepository.AppendTopics(ctx, topicEntities); err != nil {
		return o.fail(ctx, sessionId, err)
	}
	if err := o.advance(ctx, sessionId, entity.PhasePreprocessing, entity.PhaseTopicsReady); err != nil {
		return err
	}

	if err := o.advance(ctx, sessionId, entity.PhaseTopicsReady, entity.PhaseGeneratingQuestions); err != nil {
		return err
	}
	if err := o.generateQuestions(ctx, sessionId, topicEntities, cleanedJD); err != nil {
		return o.fail(ctx, sessionId, err)
	}
	if err := o.advance(ctx, sessionId, entity.PhaseGeneratingQuestions, entity.PhaseQuestionsReady); err != nil {
		return err
	}
	if err := o.advance(ctx, sessionId, entity.PhaseQuestionsReady, entity.PhaseAwaitingResponses); err != nil {
		return err
	}

	o.logger.Info("flow", "Preparation completed", map[string]interface{}{
		"session_id":  sessionId.String(),
		"topic_count": len(topicEntities),
	})
	return nil
}

// Evaluate runs the evaluation pipeline for a session already moved to the
// evaluating phase by response submission.
func (o *Orchestrator) Evaluate(ctx context.Context, sessionId uuid.UUID) error {
	session, err := o.sessionRepository.FindById(ctx, sessionId)
	if err != nil {
		return err
	}
	if session == nil {
		o.logger.Warn("flow", "Evaluation skipped, session no longer exists", map[string]interface{}{
			"session_id": sessionId.String(),
		})
		return nil
	}
	if session.Phase != entity.PhaseEvaluating {
		o.logger.Warn("flow", "Evaluation skipped, session not in evaluating phase", map[string]interface{}{
			"session_id": sessionId.String(),
			"phase":      string(session.Phase),
		})
		return nil
	}

	transcript, err := o.buildTranscript(ctx, sessionId)
	if err != nil {
		return o.fail(ctx, sessionId, err)
	}

	jobDescription := session.CleanedJD
	if jobDescription == "" {
		jobDescription = session.JobDescription
	}

	report, err := o.evaluator.Evaluate(ctx, jobDescription, transcript)
	if err != nil {
		return o.fail(ctx, sessionId, err)
	}

	if err := o.sessionRepository.SetReport(ctx, &entity.EvaluationReport{
		Id:              uuid.New(),
		SessionId:       sessionId,
		Summary:         report.Summary,
		Strengths:       report.Strengths,
		Weaknesses:      report.Weaknesses,
		Recommendations: report.Recommendations,
		CreatedAt:       time.Now(),
	}); err != nil {
		return o.fail(ctx, sessionId, err)
	}

	if err := o.advance(ctx, sessionId, entity.PhaseEvaluating, entity.PhaseCompleted); err != nil {
		return err
	}

	o.logger.Info("flow", "Evaluation completed", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return nil
}

// cleanJobDescription strips the JD down to its technical core.
func (o *Orchestrator) cleanJobDescription(ctx context.Context, rawJD string) (string, error) {
	var cleaned string
	err := utils.WithRetry(ctx, o.config.CallTimeout, o.config.MaxCallRetries, func(callCtx context.Context) error {
		response, callErr := o.llmProvider.Chat(callCtx, []llm.Message{
			{Role: "system", Content: constant.JDCleaningSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(constant.JDCleaningUserPrompt, rawJD)},
		}, llm.WithTemperature(0.2))
		if callErr != nil {
			return callErr
		}
		cleaned = response
		return nil
	})
	if err != nil {
		return "", apperror.Wrap(apperror.KindExternalCall, apperror.StagePreprocessing,
			"job description cleaning failed", err)
	}
	if cleaned == "" {
		cleaned = rawJD
	}
	return cleaned, nil
}

// ingestResume chunks the resume and embeds every chunk into the session's
// retrieval partition.
func (o *Orchestrator) ingestResume(ctx context.Context, sessionId uuid.UUID, resumeText string) error {
	segments, err := textsplit.Split(resumeText, o.config.ChunkSize, o.config.ChunkOverlap)
	if err != nil {
		if errors.Is(err, textsplit.ErrEmptyDocument) {
			return apperror.Wrap(apperror.KindValidation, apperror.StagePreprocessing,
				"resume is empty after normalization", err)
		}
		return apperror.Wrap(apperror.KindFatalFlow, apperror.StagePreprocessing, "resume chunking failed", err)
	}

	chunks := make([]*entity.ResumeChunk, len(segments))
	for i, segment := range segments {
		var embedResp *embedding.EmbeddingResponse
		err := utils.WithRetry(ctx, o.config.CallTimeout, o.config.MaxCallRetries, func(callCtx context.Context) error {
			resp, callErr := o.embeddingProvider.Generate(callCtx, segment, "RETRIEVAL_DOCUMENT")
			if callErr != nil {
				return callErr
			}
			embedResp = resp
			return nil
		})
		if err != nil {
			return apperror.Wrap(apperror.KindExternalCall, apperror.StagePreprocessing,
				fmt.Sprintf("embedding chunk %d failed", i), err)
		}
		chunks[i] = &entity.ResumeChunk{
			Id:             uuid.New(),
			SessionId:      sessionId,
			Content:        segment,
			SequenceIndex:  i,
			EmbeddingValue: embedResp.Embedding.Values,
			CreatedAt:      time.Now(),
		}
	}

	if err := o.chunkRepository.CreateBulk(ctx, chunks); err != nil {
		return apperror.Wrap(apperror.KindFatalFlow, apperror.StagePreprocessing, "chunk persistence failed", err)
	}

	o.logger.Info("flow", "Resume ingested", map[string]interface{}{
		"session_id":  sessionId.String(),
		"chunk_count": len(chunks),
	})
	return nil
}

// generateQuestions fans one generator task out per topic under the
// concurrency bound. The join covers every topic: a slot stays empty on an
// isolated failure but the pipeline only advances after all slots settle, and
// results land in topic order regardless of completion order.
func (o *Orchestrator) generateQuestions(ctx context.Context, sessionId uuid.UUID, topicEntities []*entity.Topic, cleanedJD string) error {
	sem := semaphore.NewWeighted(int64(o.config.MaxConcurrentTopicTasks))
	results := make([][]string, len(topicEntities))

	g, gCtx := errgroup.WithContext(ctx)
	for i, topic := range topicEntities {
		i, topic := i, topic
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			questionList, genErr := o.questionGenerator.Generate(gCtx, sessionId, topic.Label, cleanedJD)
			if genErr != nil {
				// Isolated: this topic stays empty, siblings keep going.
				o.logger.Error("flow", "Question generation failed for topic", map[string]interface{}{
					"session_id": sessionId.String(),
					"topic":      topic.Label,
					"error":      genErr.Error(),
				})
				results[i] = nil
				return nil
			}
			results[i] = questionList
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Only cancellation reaches here; isolated failures are swallowed above.
		return apperror.Wrap(apperror.KindFatalFlow, apperror.StageQuestionGen,
			apperror.ErrFlowCancelled.Error(), err)
	}

	var questionEntities []*entity.Question
	for i, topic := range topicEntities {
		for ordinal, text := range results[i] {
			questionEntities = append(questionEntities, &entity.Question{
				Id:        uuid.New(),
				TopicId:   topic.Id,
				SessionId: sessionId,
				Text:      text,
				Ordinal:   ordinal,
				CreatedAt: time.Now(),
			})
		}
	}
	if len(questionEntities) > 0 {
		if err := o.sessionRepository.AppendQuestions(ctx, questionEntities); err != nil {
			return apperror.Wrap(apperror.KindFatalFlow, apperror.StageQuestionGen,
				"question persistence failed", err)
		}
	}
	return nil
}

func (o *Orchestrator) buildTranscript(ctx context.Context, sessionId uuid.UUID) ([]evaluation.QuestionAnswer, error) {
	questionList, err := o.sessionRepository.FindQuestions(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	responseList, err := o.sessionRepository.FindResponses(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	answersByQuestion := make(map[uuid.UUID]string, len(responseList))
	for _, response := range responseList {
		answersByQuestion[response.QuestionId] = response.AnswerText
	}

	transcript := make([]evaluation.QuestionAnswer, 0, len(questionList))
	for _, question := range questionList {
		transcript = append(transcript, evaluation.QuestionAnswer{
			Question: question.Text,
			Answer:   answersByQuestion[question.Id],
		})
	}
	return transcript, nil
}

// advance performs a guarded phase transition and treats a lost guard as a
// fatal conflict: the flow is supposed to be the only writer here.
func (o *Orchestrator) advance(ctx context.Context, sessionId uuid.UUID, from, to entity.Phase) error {
	ok, err := o.sessionRepository.UpdatePhase(ctx, sessionId, from, to)
	if err != nil {
		return o.fail(ctx, sessionId, err)
	}
	if !ok {
		return o.fail(ctx, sessionId, apperror.Wrap(apperror.KindConflict, apperror.StageSessionStore,
			fmt.Sprintf("phase guard lost moving %s to %s", from, to), apperror.ErrInvalidTransition))
	}
	return nil
}

// fail records the failure against the session and hands the original error
// back. Cancellation means the session was torn down mid-flight; marking it
// failed would resurrect a row the user deleted, so that case only logs.
func (o *Orchestrator) fail(ctx context.Context, sessionId uuid.UUID, cause error) error {
	stage := string(apperror.StageOf(cause))
	if stage == "" {
		stage = string(apperror.StageSessionStore)
	}

	if ctx.Err() != nil {
		o.logger.Warn("flow", "Pipeline cancelled", map[string]interface{}{
			"session_id": sessionId.String(),
			"stage":      stage,
		})
		return apperror.Wrap(apperror.KindFatalFlow, apperror.Stage(stage),
			apperror.ErrFlowCancelled.Error(), apperror.ErrFlowCancelled)
	}

	if err := o.sessionRepository.SetFailure(context.WithoutCancel(ctx), sessionId, stage, cause.Error()); err != nil {
		o.logger.Error("flow", "Failed to record session failure", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}

	o.logger.Error("flow", "Pipeline failed", map[string]interface{}{
		"session_id": sessionId.String(),
		"stage":      stage,
		"error":      cause.Error(),
	})
	return cause
}
