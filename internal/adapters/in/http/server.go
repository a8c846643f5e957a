// Package http is the REST and WebSocket surface of the dispatch service.
package http

import (
	"context"
	"net/http"
	"time"

	"dispatch/internal/core/application/broadcast"
	"dispatch/internal/core/application/reporting"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/model/zone"
	"dispatch/internal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Use case ports consumed by the server. The application handlers satisfy
// them directly.
type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	OrderClaimer interface {
		Handle(ctx context.Context, cmd commands.ClaimOrderCommand) error
	}
	OrderTransitioner interface {
		Handle(ctx context.Context, cmd commands.TransitionOrderCommand) error
	}
	LocationReporter interface {
		Handle(ctx context.Context, cmd commands.ReportLocationCommand) error
	}
	DeliveryRater interface {
		Handle(ctx context.Context, cmd commands.RateDeliveryCommand) error
	}
	AvailabilitySetter interface {
		Handle(ctx context.Context, cmd commands.SetPartnerAvailabilityCommand) error
	}
	TrackingReader interface {
		Handle(ctx context.Context, query queries.GetOrderTrackingQuery) (tracking.View, error)
	}
	OrderLister interface {
		Handle(ctx context.Context, query queries.ListOrdersQuery) ([]tracking.View, error)
	}
	OfferLister interface {
		Handle(ctx context.Context, query queries.ListOffersQuery) ([]tracking.View, error)
	}
	ZoneLister interface {
		Zones() []zone.Zone
	}
	SessionRunner interface {
		Start(ctx context.Context, orderID, partnerID kernel.UUID, source tracking.LocationSource) (*reporting.Session, error)
		StartSimulation(ctx context.Context, orderID, partnerID kernel.UUID) (*reporting.Session, error)
		Stop(orderID, partnerID kernel.UUID) bool
	}
	Broadcaster interface {
		Subscribe(ctx context.Context, orderID kernel.UUID, observer broadcast.Observer) (*broadcast.Subscription, error)
	}
)

// Handlers groups the use cases behind the routes.
type Handlers struct {
	CreateOrder     OrderCreator
	ClaimOrder      OrderClaimer
	TransitionOrder OrderTransitioner
	ReportLocation  LocationReporter
	RateDelivery    DeliveryRater
	SetAvailability AvailabilitySetter

	GetTracking TrackingReader
	ListOrders  OrderLister
	ListOffers  OfferLister
	Zones       ZoneLister

	Sessions    SessionRunner
	Broadcaster Broadcaster
}

// Options configures the server.
type Options struct {
	JWTSecret string

	// LocationRatePerSec limits location reports per partner and order.
	// Zero disables the limit.
	LocationRatePerSec float64

	// SimulationEnabled exposes the simulated route endpoints.
	SimulationEnabled bool

	Log *zap.Logger
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	h        Handlers
	opts     Options
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(h Handlers, opts Options) *Server {
	return &Server{
		h:    h,
		opts: opts,
		log:  logger.Component(opts.Log, "http"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Views are served from other origins during development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// NewEcho builds the echo instance with every route registered.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(gommonlog.WARN)
	e.Use(middleware.Recover())
	e.Use(s.requestLogger())
	s.Register(e)
	return e
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/zones", s.ListZones)

	api := e.Group("", Authenticate(s.opts.JWTSecret))

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/claim", s.ClaimOrder)
	api.POST("/orders/:id/transitions", s.TransitionOrder)
	api.POST("/orders/:id/location", s.ReportLocation, s.locationLimiter()...)
	api.POST("/orders/:id/rating", s.RateDelivery)
	if s.opts.SimulationEnabled {
		api.POST("/orders/:id/simulation", s.StartSimulation)
		api.DELETE("/orders/:id/simulation", s.StopSimulation)
	}

	api.GET("/offers", s.ListOffers)
	api.PUT("/partners/me/availability", s.SetAvailability)

	api.GET("/ws/orders/:id", s.WatchOrder)
	api.GET("/ws/partner/orders/:id", s.StreamDeviceLocation)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// ListZones handles GET /zones - the delivery zones customers can pick.
func (s *Server) ListZones(c echo.Context) error {
	zones := s.h.Zones.Zones()
	response := make([]Zone, len(zones))
	for i, z := range zones {
		response[i] = toZone(z)
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				s.log.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			s.log.Debug("request", fields...)
			return nil
		},
	})
}

func (s *Server) locationLimiter() []echo.MiddlewareFunc {
	if s.opts.LocationRatePerSec <= 0 {
		return nil
	}
	burst := max(int(s.opts.LocationRatePerSec), 1)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.opts.LocationRatePerSec),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			actor, err := ActorFrom(c)
			if err != nil {
				return "", err
			}
			return actor.String() + "/" + c.Param("id"), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusUnauthorized, Error{Status: http.StatusUnauthorized, Message: "missing actor"})
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, Error{
				Status:  http.StatusTooManyRequests,
				Code:    "rate_limited",
				Message: "too many location reports",
			})
		},
	})}
}
