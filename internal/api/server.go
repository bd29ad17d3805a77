// Package api exposes the service over a JSON HTTP API.
package api

import (
	"context"
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/service"
	"ecourts-backend/pkg/serviceutil"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	report_api_internal = "api.internal"
)

// Portals maps the path segment of a route onto the portal flow it drives.
var Portals = map[string]ecourts.Variant{
	"high-court":         ecourts.HighCourtCase,
	"district-court":     ecourts.DistrictCase,
	"causelist":          ecourts.HighCourtCauseList,
	"district-causelist": ecourts.DistrictCauseList,
}

type Server struct {
	svc  service.Service
	tel  telemetry.API
	echo *echo.Echo
}

func NewServer(svc service.Service, tel telemetry.API) *Server {
	assert.NotNil(tel)

	s := &Server{
		svc:  svc,
		tel:  telemetry.NewScopedAPI("api", tel),
		echo: echo.New(),
	}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(traced)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	g := e.Group("/api")
	g.GET("/history", s.history)
	g.GET("/debug/cache-status", s.cacheStatus)
	g.GET("/attachments/:key", s.attachment)
	g.POST("/proxy-pdf", s.proxyPdf)

	portal := g.Group("/:portal")
	portal.GET("/courts", s.courts)
	portal.POST("/session", s.openSession)
	portal.POST("/lookup/:level", s.lookup)
	portal.POST("/search", s.search)
	portal.POST("/verify", s.verify)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	return serviceutil.StartHttpServer(ctx, addr, s)
}

type failurePayload struct {
	Success bool           `json:"success"`
	Reason  service.Reason `json:"reason"`
	Error   string         `json:"error"`
}

func statusOf(reason service.Reason) int {
	switch reason {
	case service.ReasonBadRequest, service.ReasonInvalidCaptcha, service.ReasonInvalidSession:
		return http.StatusBadRequest
	case service.ReasonNoRecord, service.ReasonNotFound, service.ReasonNotUploaded:
		return http.StatusNotFound
	case service.ReasonSessionExpired:
		return http.StatusGone
	case service.ReasonRemote, service.ReasonNotAPdf:
		return http.StatusBadGateway
	case service.ReasonTransport:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var payload failurePayload
	var status int
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Internal == nil {
		status = httpErr.Code
		payload = failurePayload{Reason: service.ReasonBadRequest, Error: http.StatusText(status)}
		if msg, ok := httpErr.Message.(string); ok {
			payload.Error = msg
		}
		switch {
		case status == http.StatusNotFound:
			payload.Reason = service.ReasonNotFound
		case status >= http.StatusInternalServerError:
			payload.Reason = service.ReasonInternal
		}
	} else {
		failure := service.Classify(err)
		status = statusOf(failure.Reason)
		payload = failurePayload{Reason: failure.Reason, Error: failure.Message}
	}

	if payload.Reason == service.ReasonInternal {
		s.tel.ReportBroken(report_api_internal, c.Request().Method, c.Path(), err)
	} else {
		s.tel.ReportDebug("request failed", c.Request().Method, c.Path(), payload.Reason, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, payload)
	}
	if err != nil {
		s.tel.ReportWarning(report_api_internal, "write error response", err)
	}
}
