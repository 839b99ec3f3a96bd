package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/giftgrove/giftgrove/internal/config"
	"github.com/giftgrove/giftgrove/internal/infra/database"
	"github.com/giftgrove/giftgrove/internal/infra/repository"
	"github.com/giftgrove/giftgrove/internal/present/rest"
	"github.com/giftgrove/giftgrove/internal/present/rest/middleware"
	"github.com/giftgrove/giftgrove/internal/service"
	"github.com/giftgrove/giftgrove/internal/tracer"
	"github.com/giftgrove/giftgrove/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown, err := tracer.Setup(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			panic(fmt.Sprintf("failed to set up tracing: %v", err))
		}
		defer shutdown(ctx)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	userRepo := repository.NewUserRepository(db)
	signal := service.NewSignalService(rdb)
	directory := service.NewDirectoryService(userRepo)
	registry := usecase.NewRegistryUsecase(userRepo, signal)
	backfill := usecase.NewBackfillUsecase(userRepo, signal)

	if err := backfill.EnsureManagersField(ctx); err != nil {
		panic(fmt.Sprintf("managers backfill failed: %v", err))
	}

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(otelecho.Middleware("giftgrove"))
	e.Use(middleware.NewActorMiddleware(directory).IdentifyActor)

	handler := rest.NewHandler(userRepo, registry, backfill, directory)
	handler.RegisterRoutes(e)

	listen := conf.Server.ListenAddr
	if listen == "" {
		listen = ":8000"
	}
	e.Logger.Fatal(e.Start(listen))
}
