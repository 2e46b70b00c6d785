package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"signaltracker/internal/config"
	cronrunner "signaltracker/internal/cron"
	"signaltracker/internal/db"
	"signaltracker/internal/extract"
	"signaltracker/internal/handler"
	"signaltracker/internal/logger"
	"signaltracker/internal/notify"
	"signaltracker/internal/price"
	gormrepository "signaltracker/internal/repository/gorm"
	"signaltracker/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("ST_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ST_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	extractor := &extract.Extractor{Logger: logger}
	gecko := price.NewCoinGecko(cfg.Prices.CoinGecko)
	binance := price.NewBinance(cfg.Prices.Binance)
	chain := &price.Chain{Providers: orderProviders(cfg.Prices.ProviderOrder, gecko, binance)}
	prices := price.NewService(chain, logger, cfg.Prices.CacheTTL)

	catalog := &service.CoinCatalog{
		Repo:      store,
		Extractor: extractor,
		Gecko:     gecko,
		Logger:    logger,
	}
	if err := catalog.Seed(context.Background()); err != nil {
		logger.Warn("coin seed failed", zap.Error(err))
	}
	if err := catalog.Refresh(context.Background()); err != nil {
		logger.Warn("initial coin refresh failed", zap.Error(err))
	}

	notifiers := notify.Fanout{&notify.LogNotifier{Logger: logger}}
	if cfg.Notifier.Kafka.Enabled {
		kafkaNotifier, err := notify.NewKafkaNotifier(cfg.Notifier.Kafka)
		if err != nil {
			logger.Fatal("kafka notifier init failed", zap.Error(err))
		}
		defer kafkaNotifier.Close()
		notifiers = append(notifiers, kafkaNotifier)
	}

	ingest := &service.IngestService{
		Repo:       store,
		Extractor:  extractor,
		Notifier:   notifiers,
		Logger:     logger,
		Timeframes: cfg.Timeframes,
	}
	checker := &service.PerformanceChecker{
		Repo:     store,
		Prices:   prices,
		Notifier: notifiers,
		Logger:   logger,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	signalHandler := &handler.SignalHandler{Repo: store, Ingest: ingest}
	signalHandler.Register(engine)
	priceHandler := &handler.PriceHandler{Prices: prices}
	priceHandler.Register(engine)
	perfHandler := &handler.PerformanceHandler{Repo: store}
	perfHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		tickSpec := "@every " + cfg.Checker.Interval.String()
		_, err = cronRunner.Add(tickSpec, func(ctx context.Context) {
			tickCtx := ctx
			cancel := func() {}
			if cfg.Checker.TickTimeout > 0 {
				tickCtx, cancel = context.WithTimeout(ctx, cfg.Checker.TickTimeout)
			}
			defer cancel()
			if err := checker.RunOnce(tickCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("performance check failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register performance check failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.SymbolRefresh, func(ctx context.Context) {
			if err := catalog.Refresh(ctx); err != nil {
				logger.Warn("coin refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register coin refresh failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.CachePrune, func(ctx context.Context) {
			prices.Prune(time.Now().UTC())
		})
		if err != nil {
			logger.Warn("cron register cache prune failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	if cfg.Prices.Stream.Enabled {
		stream := &price.BinanceStream{
			Logger:  logger,
			Cache:   prices,
			URL:     cfg.Prices.Stream.URL,
			Quote:   cfg.Prices.Binance.Quote,
			Symbols: cfg.Prices.Stream.Symbols,
		}
		go func() {
			if err := stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("price stream stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func orderProviders(order []string, gecko *price.CoinGecko, binance *price.Binance) []price.Provider {
	out := make([]price.Provider, 0, len(order))
	for _, name := range order {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "coingecko":
			out = append(out, gecko)
		case "binance":
			out = append(out, binance)
		}
	}
	if len(out) == 0 {
		out = []price.Provider{gecko, binance}
	}
	return out
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
