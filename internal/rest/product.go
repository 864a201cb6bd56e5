package rest

import (
	"context"
	"net/http"
	"time"

	"hybridRecommender/domain"
	"hybridRecommender/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ProductService interface {
	Popular(ctx context.Context, topN int) (domain.Outcome, error)
	Similar(ctx context.Context, productID string, topN int) (domain.Outcome, error)
	Search(ctx context.Context, term string) ([]domain.ProductInfo, error)
	ProductInfo(ctx context.Context, productID string) (domain.ProductInfo, error)
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type TopNQuery struct {
	N     int  `query:"n" validate:"gte=0,lte=1000"`
	Debug bool `query:"debug"`
}

type ProductQuery struct {
	ProductID string `param:"id" validate:"required,max=64"`
	N         int    `query:"n" validate:"gte=0,lte=1000"`
	Debug     bool   `query:"debug"`
}

type SearchQuery struct {
	Term string `query:"q" validate:"required,max=200"`
}

// GET /api/v1/products/popular?n=10
func (h *ProductHandler) Popular(c echo.Context) error {
	var q TopNQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	out, err := h.productService.Popular(ctx, q.N)
	if err != nil {
		logger.Error("Failed to get popular products", err)
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(toOutcomeResponse(out, q.Debug)))
}

// GET /api/v1/products/search?q=sony
func (h *ProductHandler) Search(c echo.Context) error {
	var q SearchQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.Search(ctx, q.Term)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

// GET /api/v1/products/:id
func (h *ProductHandler) GetProductInfo(c echo.Context) error {
	var q ProductQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	info, err := h.productService.ProductInfo(ctx, q.ProductID)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(info))
}

// GET /api/v1/products/:id/similar?n=10
func (h *ProductHandler) Similar(c echo.Context) error {
	var q ProductQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	out, err := h.productService.Similar(ctx, q.ProductID, q.N)
	if err != nil {
		logger.Error("Failed to find similar products", "product_id", q.ProductID, err)
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(toOutcomeResponse(out, q.Debug)))
}
