package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"onboarding-workers/internal/api"
	"onboarding-workers/internal/assistant"
	"onboarding-workers/internal/common/camunda"
	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/database"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/internal/common/onboarding"
	"onboarding-workers/internal/nlp"
	"onboarding-workers/internal/transport"
	"onboarding-workers/pkg/registry"

	ci "onboarding-workers/internal/workers/assistant/classify-intent"
	pcm "onboarding-workers/internal/workers/assistant/process-chat-message"
	csh "onboarding-workers/internal/workers/onboarding/check-service-health"
	oo "onboarding-workers/internal/workers/onboarding/orchestrate-onboarding"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting worker manager", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.Services.Environment,
	})

	obsOpts, err := observability.Options(cfg.Tracing)
	if err != nil {
		zapLog.Fatal("trace exporter init failed", zap.Error(err))
	}
	obs := observability.New(cfg.App.Name, obsOpts...)
	defer obs.Shutdown()
	log.Info("tracing configured", map[string]interface{}{
		"exporter":    cfg.Tracing.Exporter,
		"sampleRatio": cfg.Tracing.SampleRatio,
	})

	// --- Classifier, services and assistant ---
	var rules *nlp.Rules
	if cfg.NLP.RulesPath != "" {
		rules, err = nlp.LoadRules(cfg.NLP.RulesPath)
		if err != nil {
			zapLog.Fatal("nlp rules load failed", zap.String("path", cfg.NLP.RulesPath), zap.Error(err))
		}
		log.Info("loaded nlp rules", map[string]interface{}{"path": cfg.NLP.RulesPath})
	}
	classifier := nlp.NewClassifier(rules)

	services, err := onboarding.New(cfg.Services, log)
	if err != nil {
		zapLog.Fatal("onboarding services init failed", zap.Error(err))
	}
	chat := assistant.New(classifier, services, log, assistant.WithObservability(obs))

	readiness := map[string]api.ReadinessCheck{}

	// --- Redis (optional) ---
	var cache redis.Cmdable
	if cfg.Redis.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(context.Background())
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		cache = rdb.Client
		readiness["redis"] = rdb.Ping
		log.Info("redis connected", map[string]interface{}{"address": cfg.Redis.Address})
	}

	// --- Zeebe workers (optional) ---
	var pool *camunda.WorkerPool
	if cfg.Camunda.Enabled {
		zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		defer zeebe.Close()
		readiness["zeebe"] = zeebe.HealthCheck

		opts := []camunda.PoolOption{camunda.WithObservability(obs)}
		if cfg.RegistryPath != "" {
			validator, err := loadValidator(cfg.RegistryPath)
			if err != nil {
				zapLog.Fatal("activity registry load failed", zap.String("path", cfg.RegistryPath), zap.Error(err))
			}
			opts = append(opts, camunda.WithInputValidator(validator))
		}
		pool = camunda.NewWorkerPool(zeebe.GetClient(), log, opts...)
		startWorkers(pool, cfg, classifier, cache, chat, services, obs, log)
		log.Info("workers registered", map[string]interface{}{"taskTypes": pool.TaskTypes()})
	}

	// --- NATS classification endpoint (optional) ---
	if cfg.NATS.Enabled {
		nt, err := transport.NewNATSTransport(cfg.NATS, cfg.App.Name, classifier, obs, log)
		if err != nil {
			zapLog.Fatal("nats connect failed", zap.Error(err))
		}
		if err := nt.Start(); err != nil {
			zapLog.Fatal("nats subscribe failed", zap.Error(err))
		}
		defer nt.Close()
	}

	// --- HTTP API, health and metrics ---
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: api.NewRouter(api.Dependencies{
			Classifier:     classifier,
			Assistant:      chat,
			Services:       services,
			Observability:  obs,
			Readiness:      readiness,
			ServiceName:    cfg.App.Name,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			Logger:         log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if pool != nil {
		pool.Close()
	}

	log.Info("worker manager stopped gracefully", nil)
}

func loadValidator(path string) (*registry.Validator, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	return registry.NewValidator(reg)
}

func startWorkers(
	pool *camunda.WorkerPool,
	cfg *config.Config,
	classifier *nlp.Classifier,
	cache redis.Cmdable,
	chat *assistant.Assistant,
	services *onboarding.Services,
	obs *observability.Observability,
	log logger.Logger,
) {
	if wcfg := config.GetWorkerConfig(cfg, ci.TaskType); wcfg.Enabled {
		handler := ci.NewHandler(ci.NewConfig(wcfg, cfg.NLP), classifier, cache, log, ci.WithObservability(obs))
		pool.Start(ci.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, pcm.TaskType); wcfg.Enabled {
		handler := pcm.NewHandler(pcm.NewConfig(wcfg), chat, log)
		pool.Start(pcm.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, oo.TaskType); wcfg.Enabled {
		handler := oo.NewHandler(oo.NewConfig(wcfg), services, log)
		pool.Start(oo.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, csh.TaskType); wcfg.Enabled {
		handler := csh.NewHandler(csh.NewConfig(wcfg), services, log)
		pool.Start(csh.TaskType, wcfg, handler.Handle)
	}
}
