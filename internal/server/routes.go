package server

import (
	"net/http"

	"catalogadmin/internal/handler"
	"catalogadmin/internal/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ルートにぶら下げるハンドラ
type Handlers struct {
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
}

// echoを組み立ててルートを登録する
func NewRouter(logger *zap.Logger, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	//panicした500もアクセスログに残すためRecoverは内側
	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog(logger))
	e.Use(middleware.Recover(logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e)

	return e
}
