package middleware

import (
	"hybridRecommender/business/hybrid"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Trace propagates X-Request-ID (or a fresh uuid) into the request context
// so service logs and audit rows carry the same id.
func Trace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			traceID := req.Header.Get(echo.HeaderXRequestID)
			if traceID == "" || len(traceID) > 128 {
				traceID = uuid.NewString()
			}

			c.Response().Header().Set(echo.HeaderXRequestID, traceID)
			c.SetRequest(req.WithContext(hybrid.WithTraceID(req.Context(), traceID)))

			return next(c)
		}
	}
}
