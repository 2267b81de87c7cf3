package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/location"
	"github.com/jhoicas/retail-ledger/internal/application/notification"
	"github.com/jhoicas/retail-ledger/internal/application/till"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/mongodb"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/notify"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/retail-ledger/internal/interfaces/http"
	"github.com/jhoicas/retail-ledger/pkg/config"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// backend repositorios de la capa de persistencia elegida.
type backend struct {
	txRunner     inventory.TxRunner
	products     repository.ProductRepository
	movements    repository.StockMovementRepository
	stock        repository.StockRepository
	locations    repository.LocationRepository
	reports      repository.EndOfDayReportRepository
	transactions repository.TransactionLog
	outbox       repository.OutboxRepository
	closers      []func()
	closeOnce    sync.Once
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	}).Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var be *backend
	if cfg.DB.Enabled() {
		be, err = openPostgres(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
	} else {
		log.Warn().Msg("sin DATABASE_URL ni DB_HOST: backend en memoria con datos de demostración")
		be, err = openMemory(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("seed en memoria")
		}
	}
	defer be.close()

	if cfg.Transactions.Backend == "mongo" {
		if err := useMongoTransactions(ctx, be, cfg.Mongo, log); err != nil {
			// log.Fatal sale sin ejecutar los defer
			be.close()
			log.Fatal().Err(err).Msg("conexión a MongoDB")
		}
		log.Info().Str("collection", cfg.Mongo.Collection).Msg("log de transacciones en MongoDB")
	}

	collector := metrics.New()
	directory := location.NewDirectory(be.locations, log)
	ledgerUC := inventory.NewLedgerUseCase(
		be.txRunner, be.products, be.movements, be.stock, be.locations, directory,
		inventory.WithMetrics(collector),
		inventory.WithLogger(log),
	)
	tillUC := till.NewUseCase(
		be.reports, be.transactions, directory,
		till.WithMetrics(collector),
		till.WithLogger(log),
	)

	sink, closeSink := buildSink(cfg, log)
	defer closeSink()
	dispatchCfg := notification.DefaultConfig()
	dispatchCfg.Schedule = cfg.Outbox.Schedule
	dispatchCfg.BatchSize = cfg.Outbox.BatchSize
	dispatchCfg.MaxAttempts = cfg.Outbox.MaxAttempts
	dispatcher := notification.NewDispatcher(be.outbox, sink, dispatchCfg, log, collector)
	if err := dispatcher.Start(); err != nil {
		closeSink()
		be.close()
		log.Fatal().Err(err).Msg("despachador de notificaciones")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestTimeout(time.Duration(cfg.HTTP.RequestTimeoutSeconds) * time.Second))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Retail Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledgerUC,
		Till:      tillUC,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Logger:    log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	dispatcher.Stop(shutdownCtx)

	log.Info().Msg("aplicación detenida")
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &backend{
		txRunner:     postgres.NewTxRunner(pool),
		products:     postgres.NewProductRepository(pool),
		movements:    postgres.NewStockMovementRepository(pool),
		stock:        postgres.NewStockRepository(pool),
		locations:    postgres.NewLocationRepository(pool),
		reports:      postgres.NewEndOfDayReportRepository(pool),
		transactions: postgres.NewTransactionLog(pool),
		outbox:       postgres.NewOutboxRepository(pool),
		closers:      []func(){pool.Close},
	}, nil
}

func openMemory(ctx context.Context) (*backend, error) {
	st := memory.New()
	if err := seed.Apply(ctx, seed.Demo(), seed.ForMemory(st)); err != nil {
		return nil, err
	}
	return &backend{
		txRunner:     memory.NewTxRunner(st),
		products:     st.Products(),
		movements:    st.Movements(),
		stock:        st.Stock(),
		locations:    st.Locations(),
		reports:      st.Reports(),
		transactions: st.Transactions(),
		outbox:       st.Outbox(),
	}, nil
}

// close libera los recursos en orden inverso de apertura. Solo la primera llamada tiene efecto.
func (b *backend) close() {
	b.closeOnce.Do(func() {
		for i := len(b.closers) - 1; i >= 0; i-- {
			b.closers[i]()
		}
	})
}

// useMongoTransactions reemplaza el log de transacciones por la colección de MongoDB.
func useMongoTransactions(ctx context.Context, be *backend, cfg config.MongoConfig, log zerolog.Logger) error {
	txLog, err := mongodb.NewTransactionLog(ctx, cfg.URI, cfg.Database, cfg.Collection)
	if err != nil {
		return err
	}
	be.transactions = txLog
	be.closers = append(be.closers, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := txLog.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("cerrar MongoDB")
		}
	})
	return nil
}

// buildSink arma el sink compuesto según NOTIFY_SINKS.
func buildSink(cfg *config.Config, log zerolog.Logger) (notification.Sink, func()) {
	var sinks []notification.Sink
	closeFn := func() {}
	for _, name := range cfg.Notify.Sinks {
		switch name {
		case "log":
			sinks = append(sinks, notify.NewLogSink(log))
		case "redis":
			client := redis.NewUniversalClient(&redis.UniversalOptions{
				Addrs:    []string{cfg.Redis.Addr},
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			closeFn = func() {
				if err := client.Close(); err != nil {
					log.Error().Err(err).Msg("cerrar Redis")
				}
			}
			sinks = append(sinks, notify.NewRedisSink(client, cfg.Redis.Channel))
		case "webhook":
			sinks = append(sinks, notify.NewWebhookSink(cfg.Webhook.URL, cfg.Webhook.Token,
				time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second))
		}
	}
	log.Info().Strs("sinks", cfg.Notify.Sinks).Msg("notificaciones de stock bajo")
	return notify.NewMultiSink(sinks...), closeFn
}
