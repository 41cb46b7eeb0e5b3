// Package api serves simulations and stored runs over HTTP.
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/loopsim/internal/statistics"
	"github.com/san-kum/loopsim/internal/storage"
)

const EndpointPathAlive = "/alive/"

type Service struct {
	store    *storage.Store
	recorder *statistics.Recorder
}

// CreateRestService builds the REST server. Request and simulation metrics
// are registered on reg and served at /metrics. A nil store disables
// persisting and reading runs.
func CreateRestService(store *storage.Store, reg *prometheus.Registry, recorder *statistics.Recorder) (*echo.Echo, error) {
	if err := reg.Register(recorder); err != nil {
		return nil, err
	}

	echoRest := echo.New()
	echoRest.HideBanner = true
	echoRest.HidePort = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())
	echoRest.Use(middleware.Recover())
	echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "loopsim",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics/"
		},
	}))

	s := &Service{store: store, recorder: recorder}

	echoRest.GET(EndpointPathAlive, isAlive)
	echoRest.GET("/metrics/", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	registerSimulationEndpoints(echoRest, s)
	registerRunEndpoints(echoRest, s)

	return echoRest, nil
}
