package rest

import (
	"context"
	"net/http"
	"time"

	"hybridRecommender/business/hybrid"
	"hybridRecommender/domain"
	"hybridRecommender/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
		timeout  time.Duration
	}

	RecommendationService interface {
		RecommendForUser(ctx context.Context, userID string, topN int) (domain.Outcome, error)
		DebugRecommendForUser(ctx context.Context, userID string, topN int) (domain.DebugRanking, error)
	}

	RecommendQuery struct {
		UserID string `param:"user_id" validate:"required,max=64"`
		N      int    `query:"n" validate:"gte=0,lte=1000"`
		Debug  bool   `query:"debug"`
	}

	// OutcomeResponse is the wire form of domain.Outcome. FallbackReason is
	// only filled when the caller asks for debug output.
	OutcomeResponse struct {
		Requested      domain.Strategy      `json:"requested"`
		Strategy       domain.Strategy      `json:"strategy"`
		Items          []domain.ProductInfo `json:"items"`
		FallbackReason string               `json:"fallback_reason,omitempty"`
	}
)

func NewRecommendationHandler(svc RecommendationService, timeout time.Duration) *RecommendationHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
		timeout:  timeout,
	}
}

func toOutcomeResponse(out domain.Outcome, debug bool) OutcomeResponse {
	res := OutcomeResponse{
		Requested: out.Requested,
		Strategy:  out.Strategy,
		Items:     out.Items,
	}
	if res.Items == nil {
		res.Items = []domain.ProductInfo{}
	}
	if debug {
		res.FallbackReason = out.Reason()
	}
	return res
}

// GET /api/v1/recommendations/users/:user_id?n=10&debug=true
func (h *RecommendationHandler) RecommendForUser(c echo.Context) error {
	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	out, err := h.service.RecommendForUser(ctx, q.UserID, q.N)
	if err != nil {
		logger.Error("Failed to recommend for user", "user_id", q.UserID, "trace_id", hybrid.TraceIDFromContext(ctx), err)
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(toOutcomeResponse(out, q.Debug)))
}

// GET /api/v1/recommendations/users/:user_id/debug?n=10
func (h *RecommendationHandler) DebugRecommendForUser(c echo.Context) error {
	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	run, err := h.service.DebugRecommendForUser(ctx, q.UserID, q.N)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(run))
}
