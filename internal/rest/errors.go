package rest

import (
	"context"
	"errors"
	"net/http"

	"hybridRecommender/domain"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCatalogNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownUser), errors.Is(err, domain.ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
