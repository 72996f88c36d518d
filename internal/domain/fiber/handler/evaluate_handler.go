package handler

import (
	"context"
	"errors"
	"time"

	"github.com/fadilmartias/form-evaluator/internal/dto"
	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/fadilmartias/form-evaluator/internal/formconfig"
	"github.com/fadilmartias/form-evaluator/internal/middleware"
	"github.com/fadilmartias/form-evaluator/internal/repository"
	"github.com/fadilmartias/form-evaluator/internal/service"
	"github.com/fadilmartias/form-evaluator/internal/usecase"
	"github.com/fadilmartias/form-evaluator/internal/util"
	"github.com/gofiber/fiber/v2"
)

type EvaluateHandler struct {
	uc *usecase.EvaluationUsecase
}

func NewEvaluateHandler(uc *usecase.EvaluationUsecase) *EvaluateHandler {
	return &EvaluateHandler{uc: uc}
}

func (h *EvaluateHandler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api")
	judgeLimit := middleware.RateLimiter(20, time.Minute)

	api.Get("/health", h.Health)
	api.Post("/evaluate", judgeLimit, h.Evaluate)
	api.Post("/evaluate-field", judgeLimit, h.EvaluateField)
	api.Post("/save-evaluation", h.SaveEvaluation)
	api.Get("/evaluations/:id", h.Result)
	api.Get("/forms", h.ListForms)
	api.Post("/forms/reload", h.ReloadForms)
	api.Get("/forms/:id", h.GetForm)
	api.Get("/forms/:id/evaluations", h.ListEvaluations)
}

func (h *EvaluateHandler) Health(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "OK",
		Data:    fiber.Map{"status": "ok", "time": time.Now().UTC()},
	})
}

func (h *EvaluateHandler) Evaluate(c *fiber.Ctx) error {
	var req dto.EvaluateRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	out, err := h.uc.Evaluate(c.UserContext(), req)
	if err != nil {
		return h.fail(c, "failed to evaluate submission", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success evaluate submission",
		Data:    out,
	})
}

func (h *EvaluateHandler) EvaluateField(c *fiber.Ctx) error {
	var req dto.EvaluateFieldRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	v, err := h.uc.EvaluateField(c.UserContext(), req)
	if err != nil {
		return h.fail(c, "failed to evaluate field", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success evaluate field",
		Data:    dto.EvaluateFieldResponse{Score: v.Score, Feedback: v.Feedback},
	})
}

func (h *EvaluateHandler) SaveEvaluation(c *fiber.Ctx) error {
	var req dto.SaveEvaluationRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	id, err := h.uc.SaveEvaluation(c.UserContext(), req)
	if err != nil {
		return h.fail(c, "failed to save evaluation", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success save evaluation",
		Data:    fiber.Map{"eval_id": id},
	})
}

func (h *EvaluateHandler) Result(c *fiber.Ctx) error {
	eval, err := h.uc.GetResult(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "evaluation not found", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get evaluation result",
		Data:    dto.NewEvaluationDTO(eval),
	})
}

func (h *EvaluateHandler) ListEvaluations(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", usecase.DefaultPageSize)

	evals, pagination, err := h.uc.ListByForm(c.UserContext(), c.Params("id"), page, pageSize)
	if err != nil {
		return h.fail(c, "failed to list evaluations", err)
	}
	data := make([]dto.EvaluationDTO, 0, len(evals))
	for i := range evals {
		data = append(data, dto.NewEvaluationDTO(&evals[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:       fiber.StatusOK,
		Message:    "Success list evaluations",
		Data:       data,
		Pagination: pagination,
	})
}

func (h *EvaluateHandler) ListForms(c *fiber.Ctx) error {
	forms, err := h.uc.ListForms()
	if err != nil {
		return h.fail(c, "failed to load forms", err)
	}
	data := make([]dto.FormSummaryDTO, 0, len(forms))
	for _, def := range forms {
		data = append(data, dto.NewFormSummaryDTO(def))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success list forms",
		Data:    data,
	})
}

func (h *EvaluateHandler) GetForm(c *fiber.Ctx) error {
	def, err := h.uc.GetForm(c.Params("id"))
	if err != nil {
		return h.fail(c, "form not found", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get form",
		Data:    dto.NewFormDTO(def),
	})
}

func (h *EvaluateHandler) ReloadForms(c *fiber.Ctx) error {
	src, err := h.uc.ReloadForms(c.UserContext(), c.Query("source"))
	if err != nil {
		return h.fail(c, "failed to reload forms", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success reload forms",
		Data:    fiber.Map{"source": src},
	})
}

// bind parses the JSON body into req and validates it. When ok is false the
// error response has been written and err is the result of writing it.
func (h *EvaluateHandler) bind(c *fiber.Ctx, req any) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}, err)
	}
	if err := util.ValidateStruct(req); err != nil {
		return false, util.ValidationErrorResponse(c, err)
	}
	return true, nil
}

func (h *EvaluateHandler) fail(c *fiber.Ctx, message string, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    statusFor(err),
		Message: message,
	}, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, formconfig.ErrFormNotFound), errors.Is(err, repository.ErrEvaluationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidID),
		errors.Is(err, formconfig.ErrUnknownSource),
		errors.Is(err, service.ErrEmptyJudgeInput):
		return fiber.StatusBadRequest
	case errors.Is(err, evaluator.ErrUnsupportedShape):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrJudgeDisabled), errors.Is(err, service.ErrCircuitOpen):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}
