package http

import (
	"net/http"

	"sigillo/entities"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func NewHttpRouter(
	orchestrator Orchestrator,
	transmissionRepo TransmissionRepository,
	company entities.Company,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(otelecho.Middleware("sigillo"))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler := Handler{
		orchestrator:     orchestrator,
		transmissionRepo: transmissionRepo,
		company:          company,
	}

	e.POST("/transmissions", handler.PostTransmission)
	e.POST("/transmissions/validate", handler.PostValidate)
	e.GET("/transmissions/pending", handler.GetPendingTransmissions)
	e.GET("/transmissions/:transmission_id", handler.GetTransmissionByID)

	return e
}
