package app

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"reserva-go/internal/config"
	"reserva-go/internal/db"
	"reserva-go/internal/domain/audit"
	"reserva-go/internal/domain/availability"
	"reserva-go/internal/domain/block"
	"reserva-go/internal/domain/reservation"
	"reserva-go/internal/domain/staff"
	"reserva-go/internal/domain/unit"
	"reserva-go/internal/jobs"
	"reserva-go/internal/notify"
	"reserva-go/internal/queue"
	auditrepo "reserva-go/internal/repository/postgres/audit"
	blockrepo "reserva-go/internal/repository/postgres/block"
	reservationrepo "reserva-go/internal/repository/postgres/reservation"
	staffrepo "reserva-go/internal/repository/postgres/staff"
	unitrepo "reserva-go/internal/repository/postgres/unit"
	"reserva-go/internal/transport/httpserver"
	"reserva-go/internal/transport/httpserver/handler"
	"reserva-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	redis      *redis.Client
	publisher  *queue.Publisher
	consumer   *queue.Consumer
	scheduler  *jobs.Scheduler
}

func New(log logger.Logger) (*App, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	unitsRepo := unitrepo.NewPostgres(dbConn)
	blocksRepo := blockrepo.NewPostgres(dbConn)
	reservationsRepo := reservationrepo.NewPostgres(dbConn)
	staffRepo := staffrepo.NewPostgres(dbConn)
	auditRepo := auditrepo.NewPostgres(dbConn)

	units := unit.NewService(unitsRepo)
	blocks := block.NewService(blocksRepo)
	auditRec := audit.NewRecorder(auditRepo, log)
	staffSvc := staff.NewService(staffRepo, staff.Config{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	})

	a := &App{cfg: cfg, log: log, db: dbConn}

	var events reservation.EventPublisher
	if cfg.Queue.Enabled {
		pub, err := queue.NewPublisher(cfg.Queue.URL, log)
		if err != nil {
			// The broker being down must not keep the API offline.
			log.Warn("app: queue publisher unavailable, events disabled", "err", err)
		} else {
			a.publisher = pub
			events = pub
		}
	}

	reservations := reservation.NewService(reservationsRepo, units, blocks, events, reservation.Config{
		QRTokenTTL:    cfg.Booking.QRTokenTTL,
		CodeAttempts:  cfg.Booking.CodeAttempts,
		TokenAttempts: cfg.Booking.TokenAttempts,
	})
	avail := availability.NewService(units, blocks, reservationsRepo)

	var sender notify.Sender
	if cfg.Twilio.Enabled {
		sender = notify.NewTwilioSender(cfg.Twilio)
	}
	if cfg.Queue.Enabled && sender != nil {
		notifier := notify.NewEventNotifier(sender, log)
		a.consumer = queue.NewConsumer(cfg.Queue.URL, notifier, log)
	}
	if cfg.Jobs.Enabled {
		a.scheduler = jobs.NewScheduler(reservations, sender, cfg.Jobs, cfg.Booking.NoShowGrace, log)
	}

	if cfg.Limit.Enabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	handlers := handler.New(units, blocks, avail, reservations, staffSvc, auditRec, log)
	router := httpserver.NewRouter(cfg, handlers, staffSvc, a.redis, log)
	a.httpServer = httpserver.New(cfg, router)

	return a, nil
}

// Start launches the background pieces: the notification consumer and the
// cron scheduler.
func (a *App) Start(ctx context.Context) error {
	if a.consumer != nil {
		go a.consumer.Run(ctx)
	}
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
