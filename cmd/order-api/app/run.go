package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/mahmudalamin/zbooksapp-sub000/configs"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/adapter/cache"
	httpadapter "github.com/mahmudalamin/zbooksapp-sub000/internal/adapter/http"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/adapter/http/middleware"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/adapter/kafka"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/adapter/queue"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/adapter/repo"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/logging"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile)
	log.Info("order-api starting", "env", cfg.App.Env)

	// database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, err
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	// repos and caches
	orderRepo := repo.NewMySQLOrderRepo(db)
	productRepo := repo.NewMySQLProductRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisCache(rdb, cfg.Cache.TTL)

	// notification dispatcher: queue handoff when a broker is configured,
	// soft no-op otherwise
	var notifier usecase.Notifier = queue.NoopNotifier{}
	var amqpConn *amqp.Connection
	if cfg.Rabbit.URL != "" {
		amqpConn, err = amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return nil, nil, err
		}
		ch, err := amqpConn.Channel()
		if err != nil {
			return nil, nil, err
		}
		rn, err := queue.NewRabbitNotifier(ch)
		if err != nil {
			return nil, nil, err
		}
		notifier = rn
		if err := setupNotificationWorker(ch); err != nil {
			return nil, nil, err
		}
	}

	// use cases
	validator := usecase.NewIntakeValidator(productRepo)
	place := usecase.NewPlaceOrder(orderRepo, validator, idem, statusCache, notifier)
	updater := usecase.NewStatusUpdater(orderRepo, statusCache, notifier)

	// payment gateway events
	if len(cfg.Kafka.Brokers) > 0 {
		if err := setupPaymentListener(cfg, updater); err != nil {
			return nil, nil, err
		}
	}

	// http
	h := httpadapter.NewOrderHandler(place, updater, orderRepo, cfg.Dev())
	th := httpadapter.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(h, th, authz)

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
		if amqpConn != nil {
			_ = amqpConn.Close()
		}
	}
	return &App{Router: router}, cleanup, nil
}

// setupNotificationWorker drains the notification queues into the delivery
// boundary. Runs in-process until a dedicated mail service takes over the
// queues.
func setupNotificationWorker(ch *amqp.Channel) error {
	h := queue.NewNotificationHandler(queue.LogMailer{})

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register("order.confirmation.q",
		queue.JSONHandler[usecase.OrderConfirmationMsg]{HandleFunc: h.HandleConfirmation})
	router.Register("order.status_update.q",
		queue.JSONHandler[usecase.StatusUpdateMsg]{HandleFunc: h.HandleStatusUpdate})
	return router.Start()
}

func setupPaymentListener(cfg configs.Config, updater *usecase.StatusUpdater) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	h := kafka.NewPaymentEventHandler(updater)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.PaymentTopic}, h.Handle, logging.New("kafka"))

	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			logging.New("kafka").Error("payment consumer stopped", "err", err)
		}
	}()
	return nil
}
