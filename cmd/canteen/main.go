package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shubham-1706-g/Class2Canteen/internal/app"
	"github.com/shubham-1706-g/Class2Canteen/internal/cart"
	"github.com/shubham-1706-g/Class2Canteen/internal/config"
	"github.com/shubham-1706-g/Class2Canteen/internal/events"
	"github.com/shubham-1706-g/Class2Canteen/internal/handler"
	"github.com/shubham-1706-g/Class2Canteen/internal/postgres"
	"github.com/shubham-1706-g/Class2Canteen/internal/repo"
	"github.com/shubham-1706-g/Class2Canteen/internal/service"
	"github.com/shubham-1706-g/Class2Canteen/pkg/cache"
	"github.com/shubham-1706-g/Class2Canteen/pkg/trm"

	"github.com/joho/godotenv"
)

func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	panicIfErr("failed to run migrations", postgres.Migrate(db))

	canteenRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)
	weeklyCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	publisher := events.NewKafkaPublisher(logger, conf.Kafka)

	redisClient := cart.NewClient(conf.Redis)
	cartStore := cart.NewStore(redisClient, conf.Redis.CartTTL)

	orderService := service.NewOrderService(logger, txManager, canteenRepo, weeklyCache, publisher)
	authService := service.NewAuthService(logger, canteenRepo, conf.Auth.JWTSecret, conf.Auth.TokenTTL)
	catalogService := service.NewCatalogService(logger, canteenRepo)

	application := app.New(logger, conf)
	application.SetHTTPHandlers(
		handler.NewOrdersHandler(logger, orderService, authService),
		handler.NewAuthHandler(logger, authService, authService),
		handler.NewCatalogHandler(logger, catalogService, authService),
		handler.NewCartHandler(logger, cartStore, authService),
	)
	application.SetStarters(weeklyCache)
	application.SetClosers(publisher, redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", application.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", application.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
