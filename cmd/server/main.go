package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/bizdesk/api/handler"
	"github.com/fastygo/bizdesk/api/transport"
	"github.com/fastygo/bizdesk/internal/config"
	"github.com/fastygo/bizdesk/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/bizdesk/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/bizdesk/internal/infrastructure/redis"
	"github.com/fastygo/bizdesk/internal/infrastructure/supabase"
	"github.com/fastygo/bizdesk/internal/middleware"
	"github.com/fastygo/bizdesk/internal/router"
	"github.com/fastygo/bizdesk/internal/services/lifecycle"
	"github.com/fastygo/bizdesk/pkg/httpcontext"
	"github.com/fastygo/bizdesk/pkg/logger"
	"github.com/fastygo/bizdesk/repository"
	boltRepo "github.com/fastygo/bizdesk/repository/bolt"
	"github.com/fastygo/bizdesk/repository/postgres"
	redisRepo "github.com/fastygo/bizdesk/repository/redis"
	authUC "github.com/fastygo/bizdesk/usecase/auth"
	pagesUC "github.com/fastygo/bizdesk/usecase/pages"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	stopSignals := manager.Listen(cancel)
	defer stopSignals()

	mon := monitor.New(10*time.Second, zapLogger)

	var sessionStore repository.SessionStore
	switch cfg.SessionStore.Driver {
	case "redis":
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		sessionStore = redisRepo.NewSessionStore(redisClient, cfg.Provider.StorageKey, 0)
		mon.Register("session_store", redisInfra.Pinger(redisClient), true, 2*time.Second)
	default:
		boltStore, err := boltRepo.Open(cfg.SessionStore.Path, "auth", cfg.Provider.StorageKey)
		if err != nil {
			zapLogger.Fatal("failed to open session store", zap.Error(err))
		}
		manager.Register("session_store", func(ctx context.Context) error {
			return boltStore.Close()
		})
		sessionStore = boltStore
		mon.Register("session_store", boltStore.Ping, true, time.Second)
	}

	provider := supabase.New(supabase.Config{
		URL:           cfg.Provider.URL,
		AnonKey:       cfg.Provider.AnonKey,
		JWTSecret:     cfg.Provider.JWTSecret,
		Timeout:       cfg.Provider.Timeout,
		RefreshMargin: cfg.Provider.RefreshMargin,
	}, sessionStore, zapLogger)
	manager.Register("session_provider", func(ctx context.Context) error {
		provider.Close()
		return nil
	})

	var profiles authUC.ProfileWriter = provider
	pages := pagesUC.New(nil, nil, nil, nil, zapLogger)
	if cfg.HasDatabase() {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		mon.Register("postgresql", pool.Ping, false, 3*time.Second)

		profileRepo := postgres.NewProfileRepository(pool)
		profiles = authUC.ProfileWriterFunc(profileRepo.Insert)
		pages = pagesUC.New(
			profileRepo,
			postgres.NewClientRepository(pool),
			postgres.NewBookingRepository(pool),
			postgres.NewInvoiceRepository(pool),
			zapLogger,
		)
	} else {
		zapLogger.Info("DATABASE_URL not set, page data disabled")
	}

	controller := authUC.New(cfg.Provider.Configured(), provider, profiles, zapLogger)
	controller.Start(appCtx)
	manager.Register("auth_controller", func(ctx context.Context) error {
		controller.Close()
		return nil
	})

	if cfg.Provider.Configured() {
		mon.Register("provider", provider.Ping, true, cfg.Provider.Timeout)

		refresher := supabase.NewRefresher(provider, cfg.Provider.RefreshTick, zapLogger)
		refresher.Start()
		manager.Register("session_refresher", func(ctx context.Context) error {
			refresher.Stop(ctx)
			return nil
		})
	}

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(appCtx, cfg.Context.RequestTimeout)
	shellHandler := apiHandler.NewShellHandler(ctxAdapter, zapLogger)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(controller, transport.NewValidator(), ctxAdapter, zapLogger),
		Pages:  apiHandler.NewPageHandler(pages, ctxAdapter, zapLogger),
		Shell:  shellHandler,
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	shellMiddleware := middleware.Shell(controller.State, shellHandler.Render, zapLogger)
	r := router.New(handlers, shellMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.Bool("provider_configured", cfg.Provider.Configured()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
