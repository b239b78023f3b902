package service

import (
	"context"
	"encoding/json"
	"errors"

	"ai-interview-coach-be/internal/apperror"
	"ai-interview-coach-be/internal/dto"
	"ai-interview-coach-be/internal/pkg/logger"
	"ai-interview-coach-be/pkg/interview/flow"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drives the async pipelines. Each topic carries one message
// kind: prepare kicks the preparation flow, evaluate kicks the evaluation
// flow. Pipeline errors are acked, not nacked; the flow already recorded the
// failure on the session and redelivery cannot fix a fatal stage.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	prepareTopic  string
	evaluateTopic string
	orchestrator  *flow.Orchestrator
	flowRegistry  *FlowRegistry
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	prepareTopic string,
	evaluateTopic string,
	orchestrator *flow.Orchestrator,
	flowRegistry *FlowRegistry,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		prepareTopic:  prepareTopic,
		evaluateTopic: evaluateTopic,
		orchestrator:  orchestrator,
		flowRegistry:  flowRegistry,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	prepareMessages, err := cs.pubSub.Subscribe(ctx, cs.prepareTopic)
	if err != nil {
		return err
	}
	evaluateMessages, err := cs.pubSub.Subscribe(ctx, cs.evaluateTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range prepareMessages {
			cs.processPrepare(ctx, msg)
		}
	}()
	go func() {
		for msg := range evaluateMessages {
			cs.processEvaluate(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processPrepare(ctx context.Context, msg *message.Message) {
	var payload dto.PublishPrepareSessionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal prepare message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	runCtx, release := cs.flowRegistry.Register(ctx, payload.SessionId)
	defer release()

	if err := cs.orchestrator.Prepare(runCtx, payload.SessionId); err != nil {
		if errors.Is(err, apperror.ErrFlowCancelled) {
			cs.logger.Info("consumer", "Preparation cancelled", map[string]interface{}{
				"session_id": payload.SessionId.String(),
			})
		}
		// Failure is already on the session record.
		msg.Ack()
		return
	}
	msg.Ack()
}

func (cs *consumerService) processEvaluate(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEvaluateSessionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal evaluate message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	runCtx, release := cs.flowRegistry.Register(ctx, payload.SessionId)
	defer release()

	if err := cs.orchestrator.Evaluate(runCtx, payload.SessionId); err != nil {
		if errors.Is(err, apperror.ErrFlowCancelled) {
			cs.logger.Info("consumer", "Evaluation cancelled", map[string]interface{}{
				"session_id": payload.SessionId.String(),
			})
		}
		msg.Ack()
		return
	}
	msg.Ack()
}
