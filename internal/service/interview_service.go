package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-interview-coach-be/internal/apperror"
	"ai-interview-coach-be/internal/dto"
	"ai-interview-coach-be/internal/entity"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/internal/repository/unitofwork"
	"ai-interview-coach-be/pkg/interview/evaluation"

	"github.com/google/uuid"
)

type IInterviewService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	ShowSession(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error)
	SubmitResponses(ctx context.Context, req *dto.SubmitResponsesRequest) (*dto.SubmitResponsesResponse, error)
	ShowTranscript(ctx context.Context, id uuid.UUID) (*dto.ShowTranscriptResponse, error)
	ShowEvaluation(ctx context.Context, id uuid.UUID) (*dto.ShowEvaluationResponse, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	EvaluateTranscript(ctx context.Context, req *dto.EvaluateTranscriptRequest) (*dto.EvaluateTranscriptResponse, error)
}

type interviewService struct {
	uowFactory        unitofwork.RepositoryFactory
	preparePublisher  IPublisherService
	evaluatePublisher IPublisherService
	evaluator         *evaluation.Evaluator
	flowRegistry      *FlowRegistry
	logger            logger.ILogger
}

func NewInterviewService(
	uowFactory unitofwork.RepositoryFactory,
	preparePublisher IPublisherService,
	evaluatePublisher IPublisherService,
	evaluator *evaluation.Evaluator,
	flowRegistry *FlowRegistry,
	log logger.ILogger,
) IInterviewService {
	return &interviewService{
		uowFactory:        uowFactory,
		preparePublisher:  preparePublisher,
		evaluatePublisher: evaluatePublisher,
		evaluator:         evaluator,
		flowRegistry:      flowRegistry,
		logger:            log,
	}
}

func (s *interviewService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	candidateName := strings.TrimSpace(req.CandidateName)
	if candidateName == "" {
		candidateName = "Candidate"
	}

	session := &entity.InterviewSession{
		Id:             uuid.New(),
		CandidateName:  candidateName,
		JobDescription: req.JobDescription,
		ResumeText:     req.ResumeText,
		Phase:          entity.PhaseCreated,
		CreatedAt:      time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.Wrap(apperror.KindFatalFlow, apperror.StageSessionStore, "session create failed", err)
	}

	payload, err := json.Marshal(dto.PublishPrepareSessionMessage{SessionId: session.Id})
	if err != nil {
		return nil, err
	}
	if err := s.preparePublisher.Publish(ctx, payload); err != nil {
		return nil, apperror.Wrap(apperror.KindFatalFlow, apperror.StageSessionStore, "prepare publish failed", err)
	}

	s.logger.Info("interview", "Session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"candidate":  candidateName,
	})

	return &dto.CreateSessionResponse{Id: session.Id, Phase: string(session.Phase)}, nil
}

func (s *interviewService) ShowSession(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SessionRepository()

	session, err := repo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound
	}

	// The curated roadmap is exposed once generation has finished; earlier
	// phases and failed sessions return the phase (and failure info) only.
	var topics []*entity.Topic
	var questions []*entity.Question
	if session.Phase.AtLeast(entity.PhaseQuestionsReady) {
		topics, err = repo.FindTopics(ctx, id)
		if err != nil {
			return nil, err
		}
		questions, err = repo.FindQuestions(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	questionsByTopic := make(map[uuid.UUID][]dto.QuestionItem, len(topics))
	for _, question := range questions {
		questionsByTopic[question.TopicId] = append(questionsByTopic[question.TopicId], dto.QuestionItem{
			Id:      question.Id,
			Text:    question.Text,
			Ordinal: question.Ordinal,
		})
	}

	topicItems := make([]dto.TopicItem, len(topics))
	for i, topic := range topics {
		items := questionsByTopic[topic.Id]
		if items == nil {
			items = []dto.QuestionItem{}
		}
		topicItems[i] = dto.TopicItem{
			Id:        topic.Id,
			Label:     topic.Label,
			Ordinal:   topic.Ordinal,
			Questions: items,
		}
	}

	return &dto.ShowSessionResponse{
		Id:            session.Id,
		CandidateName: session.CandidateName,
		Phase:         string(session.Phase),
		Topics:        topicItems,
		FailedStage:   session.FailedStage,
		FailureReason: session.FailureReason,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}, nil
}

// SubmitResponses is all-or-nothing: the batch must answer every generated
// question exactly once or the session does not move.
func (s *interviewService) SubmitResponses(ctx context.Context, req *dto.SubmitResponsesRequest) (*dto.SubmitResponsesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SessionRepository()

	session, err := repo.FindById(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound
	}
	if session.Phase != entity.PhaseAwaitingResponses {
		if session.Phase.AtLeast(entity.PhaseEvaluating) || session.Phase == entity.PhaseFailed {
			return nil, apperror.Wrap(apperror.KindConflict, apperror.StageSessionStore,
				"responses already submitted or session closed", apperror.ErrInvalidTransition)
		}
		return nil, apperror.Wrap(apperror.KindValidation, apperror.StageSessionStore,
			"session has no open question set", apperror.ErrSessionNotReady)
	}

	questions, err := repo.FindQuestions(ctx, req.Id)
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]bool, len(questions))
	for _, question := range questions {
		known[question.Id] = false
	}
	for _, item := range req.Responses {
		answered, ok := known[item.QuestionId]
		if !ok {
			return nil, apperror.New(apperror.KindValidation, apperror.StageSessionStore,
				"response references a question outside this session")
		}
		if answered {
			return nil, apperror.New(apperror.KindValidation, apperror.StageSessionStore,
				"duplicate response for a question")
		}
		if strings.TrimSpace(item.AnswerText) == "" {
			return nil, apperror.New(apperror.KindValidation, apperror.StageSessionStore,
				"answer text is empty")
		}
		known[item.QuestionId] = true
	}
	for _, answered := range known {
		if !answered {
			return nil, apperror.Wrap(apperror.KindValidation, apperror.StageSessionStore,
				apperror.ErrIncompleteSubmission.Error(), apperror.ErrIncompleteSubmission)
		}
	}

	responses := make([]*entity.Response, len(req.Responses))
	for i, item := range req.Responses {
		responses[i] = &entity.Response{
			Id:          uuid.New(),
			QuestionId:  item.QuestionId,
			SessionId:   req.Id,
			AnswerText:  item.AnswerText,
			SubmittedAt: time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SessionRepository().AppendResponses(ctx, responses); err != nil {
		return nil, apperror.Wrap(apperror.KindFatalFlow, apperror.StageSessionStore, "response persistence failed", err)
	}
	ok, err := uow.SessionRepository().UpdatePhase(ctx, req.Id, entity.PhaseAwaitingResponses, entity.PhaseEvaluating)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Wrap(apperror.KindConflict, apperror.StageSessionStore,
			"concurrent submission won the phase guard", apperror.ErrInvalidTransition)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishEvaluateSessionMessage{SessionId: req.Id})
	if err != nil {
		return nil, err
	}
	if err := s.evaluatePublisher.Publish(ctx, payload); err != nil {
		return nil, apperror.Wrap(apperror.KindFatalFlow, apperror.StageSessionStore, "evaluate publish failed", err)
	}

	s.logger.Info("interview", "Responses submitted", map[string]interface{}{
		"session_id":     req.Id.String(),
		"response_count": len(responses),
	})

	return &dto.SubmitResponsesResponse{Id: req.Id, Phase: string(entity.PhaseEvaluating)}, nil
}

func (s *interviewService) ShowTranscript(ctx context.Context, id uuid.UUID) (*dto.ShowTranscriptResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SessionRepository()

	session, err := repo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound
	}
	topics, err := repo.FindTopics(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := repo.FindQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	responses, err := repo.FindResponses(ctx, id)
	if err != nil {
		return nil, err
	}

	topicLabels := make(map[uuid.UUID]string, len(topics))
	for _, topic := range topics {
		topicLabels[topic.Id] = topic.Label
	}
	answers := make(map[uuid.UUID]string, len(responses))
	for _, response := range responses {
		answers[response.QuestionId] = response.AnswerText
	}

	entries := make([]dto.TranscriptEntry, len(questions))
	for i, question := range questions {
		entries[i] = dto.TranscriptEntry{
			QuestionId: question.Id,
			Topic:      topicLabels[question.TopicId],
			Question:   question.Text,
			Answer:     answers[question.Id],
		}
	}

	return &dto.ShowTranscriptResponse{
		Id:      session.Id,
		Phase:   string(session.Phase),
		Entries: entries,
	}, nil
}

func (s *interviewService) ShowEvaluation(ctx context.Context, id uuid.UUID) (*dto.ShowEvaluationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SessionRepository()

	session, err := repo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound
	}

	report, err := repo.FindReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, apperror.Wrap(apperror.KindValidation, apperror.StageSessionStore,
			"evaluation for phase "+string(session.Phase), apperror.ErrEvaluationNotReady)
	}

	return &dto.ShowEvaluationResponse{
		Id:              report.SessionId,
		Summary:         report.Summary,
		Strengths:       report.Strengths,
		Weaknesses:      report.Weaknesses,
		Recommendations: report.Recommendations,
		CreatedAt:       report.CreatedAt,
	}, nil
}

// DeleteSession cancels any in-flight pipeline run before removing the
// session and its retrieval partition.
func (s *interviewService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SessionRepository()

	session, err := repo.FindById(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.ErrSessionNotFound
	}

	s.flowRegistry.Cancel(id)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ResumeChunkRepository().DeleteBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.SessionRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("interview", "Session deleted", map[string]interface{}{
		"session_id": id.String(),
	})
	return nil
}

// EvaluateTranscript runs the evaluator without touching any session state.
func (s *interviewService) EvaluateTranscript(ctx context.Context, req *dto.EvaluateTranscriptRequest) (*dto.EvaluateTranscriptResponse, error) {
	transcript := make([]evaluation.QuestionAnswer, len(req.Transcript))
	for i, entry := range req.Transcript {
		transcript[i] = evaluation.QuestionAnswer{
			Question: entry.Question,
			Answer:   entry.Answer,
		}
	}

	report, err := s.evaluator.Evaluate(ctx, req.JobDescription, transcript)
	if err != nil {
		return nil, err
	}

	return &dto.EvaluateTranscriptResponse{
		Summary:         report.Summary,
		Strengths:       report.Strengths,
		Weaknesses:      report.Weaknesses,
		Recommendations: report.Recommendations,
	}, nil
}
