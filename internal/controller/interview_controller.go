package controller

import (
	"ai-interview-coach-be/internal/dto"
	"ai-interview-coach-be/internal/pkg/serverutils"
	"ai-interview-coach-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInterviewController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	SubmitResponses(ctx *fiber.Ctx) error
	ShowTranscript(ctx *fiber.Ctx) error
	ShowEvaluation(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	EvaluateTranscript(ctx *fiber.Ctx) error
}

type interviewController struct {
	interviewService service.IInterviewService
}

func NewInterviewController(interviewService service.IInterviewService) IInterviewController {
	return &interviewController{
		interviewService: interviewService,
	}
}

func (c *interviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/interview/v1")
	h.Post("sessions", c.CreateSession)
	h.Get("sessions/:id", c.ShowSession)
	h.Post("sessions/:id/responses", c.SubmitResponses)
	h.Get("sessions/:id/transcript", c.ShowTranscript)
	h.Get("sessions/:id/evaluation", c.ShowEvaluation)
	h.Delete("sessions/:id", c.DeleteSession)
	h.Post("evaluate", c.EvaluateTranscript)
}

func (c *interviewController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.interviewService.CreateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Session created, preparation started", res))
}

func (c *interviewController) ShowSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.interviewService.ShowSession(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session detail", res))
}

func (c *interviewController) SubmitResponses(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	var req dto.SubmitResponsesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.interviewService.SubmitResponses(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Responses submitted, evaluation started", res))
}

func (c *interviewController) ShowTranscript(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.interviewService.ShowTranscript(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session transcript", res))
}

func (c *interviewController) ShowEvaluation(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.interviewService.ShowEvaluation(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session evaluation", res))
}

func (c *interviewController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	if err := c.interviewService.DeleteSession(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

func (c *interviewController) EvaluateTranscript(ctx *fiber.Ctx) error {
	var req dto.EvaluateTranscriptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.interviewService.EvaluateTranscript(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Transcript evaluated", res))
}
