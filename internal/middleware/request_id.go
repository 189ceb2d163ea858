package middleware

import (
	"catalogadmin/internal/requestid"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxRequestIDKey = "request_id" // string
)

// X-Request-IDを引き継ぐ（無ければ発行する）。
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestid.Header)
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}

			//echoのcontextとrequestのcontext両方へ保存
			c.Set(CtxRequestIDKey, id)
			c.SetRequest(c.Request().WithContext(requestid.With(c.Request().Context(), id)))
			c.Response().Header().Set(requestid.Header, id)

			return next(c)
		}
	}
}
