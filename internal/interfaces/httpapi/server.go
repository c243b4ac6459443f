package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"pricestick/internal/application/service"
	"pricestick/internal/application/usecase/display"
	"pricestick/internal/application/usecase/monitor"
	"pricestick/internal/domain"
)

// StatusSource reports the main loop state.
type StatusSource interface {
	Status() monitor.Status
}

type Deps struct {
	Table    *domain.AssetTable
	Status   StatusSource                    // optional
	Broker   interface{ IsConnected() bool } // optional
	Gatherer prometheus.Gatherer
	Panel    http.Handler // optional websocket panel
}

// Server exposes health, asset and metrics endpoints.
type Server struct {
	echo *echo.Echo
	deps Deps
}

func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	s := &Server{echo: e, deps: deps}
	e.GET("/healthz", s.health)
	e.GET("/api/assets", s.assets)
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	if deps.Panel != nil {
		e.GET("/ws", echo.WrapHandler(deps.Panel))
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr in the background.
func (s *Server) Start(addr string) {
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}

type healthResponse struct {
	Status        string          `json:"status"`
	Assets        int             `json:"assets"`
	MQTTConnected *bool           `json:"mqtt_connected,omitempty"`
	Loop          *monitor.Status `json:"loop,omitempty"`
}

func (s *Server) health(c echo.Context) error {
	resp := healthResponse{Status: "ok", Assets: s.deps.Table.Len()}
	if s.deps.Broker != nil {
		up := s.deps.Broker.IsConnected()
		resp.MQTTConnected = &up
	}
	if s.deps.Status != nil {
		st := s.deps.Status.Status()
		resp.Loop = &st
		if st.Cycles > 0 && st.LastSuccess.IsZero() {
			resp.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type assetResponse struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Currency    string  `json:"currency"`
	Group       string  `json:"group"`
	Price       float64 `json:"price"`
	PriceText   string  `json:"price_text"`
	Trend       string  `json:"trend"`
	LastUpdated string  `json:"last_updated"`
	Loaded      bool    `json:"loaded"`
}

func (s *Server) assets(c echo.Context) error {
	recs := s.deps.Table.Snapshot()
	out := make([]assetResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, assetResponse{
			Symbol:      r.Symbol,
			Name:        r.DisplayName,
			Currency:    r.Currency,
			Group:       r.Group().String(),
			Price:       service.RoundPrice(r.Price),
			PriceText:   display.FormatPrice(r.Price),
			Trend:       r.Trend().String(),
			LastUpdated: r.LastUpdated,
			Loaded:      !r.IsFirstUpdate,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("took", time.Since(start)).
				Msg("http request")
			return nil
		}
	}
}
