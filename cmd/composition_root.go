package cmd

import (
	"context"
	"fmt"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/catalog"
	"dispatch/internal/adapters/out/inproc"
	"dispatch/internal/adapters/out/kafka"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	redisadapter "dispatch/internal/adapters/out/redis"
	"dispatch/internal/core/application/broadcast"
	"dispatch/internal/core/application/reporting"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived components of one process.
type CompositionRoot struct {
	cfg    Config
	log    *zap.Logger
	gormDB *gorm.DB

	uowFactory *postgres.GormUnitOfWorkFactory
	orders     *orderrepo.GormOrderRepository
	campus     *catalog.Campus
	viewer     *services.TrackingViewer

	redis    goredis.UniversalClient
	events   *kafka.EventPublisher
	presence ports.PartnerPresence
	hub      *broadcast.Hub

	announcer *commands.Announcer
	sessions  *reporting.Manager
	reporter  commands.ReportLocationCommandHandler
}

func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, log *zap.Logger) (*CompositionRoot, error) {
	campus, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load campus catalog: %w", err)
	}
	eta, err := services.NewETAEstimator(campus.Catalog)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:        cfg,
		log:        log,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		orders:     orderrepo.NewGormOrderRepository(gormDB),
		campus:     campus,
		viewer:     services.NewTrackingViewer(eta, cfg.StaleAfter),
	}

	var bus ports.SnapshotBus
	if cfg.RedisAddr != "" {
		c.redis = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err = c.redis.Ping(ctx).Err(); err != nil {
			_ = c.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		bus = redisadapter.NewSnapshotBus(c.redis, log)
		c.presence = redisadapter.NewPresence(c.redis)
	} else {
		log.Info("REDIS_ADDR is empty, using in-process snapshot bus and presence")
		bus = inproc.NewSnapshotBus(inproc.DefaultBuffer)
		c.presence = inproc.NewPresence()
	}

	var events ports.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, producerErr := kafka.NewSyncProducer(cfg.KafkaBrokers)
		if producerErr != nil {
			c.Close()
			return nil, fmt.Errorf("connect to kafka: %w", producerErr)
		}
		if c.events, err = kafka.NewEventPublisher(producer, cfg.KafkaOrderChangedTopic); err != nil {
			_ = producer.Close()
			c.Close()
			return nil, err
		}
		events = c.events
	}

	c.hub = broadcast.NewHub(bus, c.orders, c.viewer, cfg.PollInterval, log)
	c.announcer = commands.NewAnnouncer(c.hub, events, log)
	c.reporter = commands.NewReportLocationCommandHandler(c.orderUoWFactory(), c.announcer)
	route, err := tracking.Densify(campus.Route, cfg.SimulationLegSteps)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("build simulated route: %w", err)
	}
	c.sessions = reporting.NewManager(c.orders, &c.reporter, route, cfg.SimulationTick, log)

	return c, nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.campus.Catalog, c.announcer)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	return commands.NewClaimOrderCommandHandler(c.orderUoWFactory(), c.presence, c.announcer)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.orderUoWFactory(), c.announcer)
}

func (c *CompositionRoot) CreateRateDeliveryCommandHandler() commands.RateDeliveryCommandHandler {
	return commands.NewRateDeliveryCommandHandler(c.orderUoWFactory(), c.announcer)
}

func (c *CompositionRoot) CreateSetPartnerAvailabilityCommandHandler() commands.SetPartnerAvailabilityCommandHandler {
	return commands.NewSetPartnerAvailabilityCommandHandler(c.presence, c.sessions)
}

func (c *CompositionRoot) CreateGetOrderTrackingQueryHandler() queries.GetOrderTrackingQueryHandler {
	return queries.NewGetOrderTrackingQueryHandler(c.orders, c.viewer)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.orders, c.viewer)
}

func (c *CompositionRoot) CreateListOffersQueryHandler() queries.ListOffersQueryHandler {
	return queries.NewListOffersQueryHandler(c.orders, c.presence, c.viewer)
}

func (c *CompositionRoot) CreateListStaleOrdersQueryHandler() queries.ListStaleOrdersQueryHandler {
	return queries.NewListStaleOrdersQueryHandler(c.gormDB)
}

// CreateServer wires every use case into the HTTP surface.
func (c *CompositionRoot) CreateServer() *httpin.Server {
	create := c.CreateCreateOrderCommandHandler()
	claim := c.CreateClaimOrderCommandHandler()
	transition := c.CreateTransitionOrderCommandHandler()
	rate := c.CreateRateDeliveryCommandHandler()
	availability := c.CreateSetPartnerAvailabilityCommandHandler()

	return httpin.NewServer(httpin.Handlers{
		CreateOrder:     &create,
		ClaimOrder:      &claim,
		TransitionOrder: &transition,
		ReportLocation:  &c.reporter,
		RateDelivery:    &rate,
		SetAvailability: &availability,
		GetTracking:     c.CreateGetOrderTrackingQueryHandler(),
		ListOrders:      c.CreateListOrdersQueryHandler(),
		ListOffers:      c.CreateListOffersQueryHandler(),
		Zones:           c.campus.Catalog,
		Sessions:        c.sessions,
		Broadcaster:     c.hub,
	}, httpin.Options{
		JWTSecret:          c.cfg.JWTSecret,
		LocationRatePerSec: c.cfg.LocationRatePerSec,
		SimulationEnabled:  c.cfg.SimulationEnabled,
		Log:                c.log,
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateListStaleOrdersQueryHandler(),
		c.cfg.StaleAfter,
		c.cfg.StaleCheckSchedule,
		c.log,
	)
}

// Close stops sessions and subscriptions, then releases the connections.
func (c *CompositionRoot) Close() {
	if c.sessions != nil {
		c.sessions.StopAll()
	}
	if c.hub != nil {
		c.hub.Close()
	}
	if c.events != nil {
		if err := c.events.Close(); err != nil {
			c.log.Warn("failed to close kafka producer", zap.Error(err))
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warn("failed to close redis client", zap.Error(err))
		}
	}
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
