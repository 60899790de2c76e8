// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"credit-risk-workers/internal/artifacts"
	"credit-risk-workers/internal/common/aws"
	"credit-risk-workers/internal/common/camunda"
	"credit-risk-workers/internal/common/config"
	"credit-risk-workers/internal/common/database"
	"credit-risk-workers/internal/common/logger"
	"credit-risk-workers/internal/common/metrics"
	"credit-risk-workers/internal/common/observability"
	"credit-risk-workers/internal/models"
	"credit-risk-workers/internal/pipeline"

	acr "credit-risk-workers/internal/workers/risk/assess-credit-risk"
	nrr "credit-risk-workers/internal/workers/risk/notify-risk-review"
)

// worker is the lifecycle shared by the job handlers.
type worker interface {
	Register(client *camunda.Client)
	Close()
	GetTaskType() string
	IsEnabled() bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("artifactSource", cfg.Artifacts.Source),
		zap.String("classifierMode", cfg.Classifier.Mode),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability init failed, continuing without otel metrics", zap.Error(err))
		obs = observability.NewNoop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Artifacts and pipeline: any failure aborts startup ---
	store, closeStore, err := openArtifactStore(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("artifact store init failed", zap.Error(err))
	}

	riskPipeline, err := buildPipeline(ctx, cfg, store, log)
	closeStore()
	if err != nil {
		zapLog.Fatal("model artifacts failed to load", zap.Error(err))
	}
	zapLog.Info("Inference pipeline ready", zap.String("store", store.Describe()))

	// --- Zeebe ---
	camundaClient, err := camunda.NewClient(ctx, cfg.Camunda.BrokerAddress, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer camundaClient.Close()
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Review notification channels ---
	publisher, emailSender, err := buildNotifiers(ctx, cfg)
	if err != nil {
		zapLog.Fatal("aws client init failed", zap.Error(err))
	}

	assessHandler, err := acr.NewHandler(acr.HandlerOptions{
		AppConfig:     cfg,
		Assessor:      riskPipeline,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("assess-credit-risk handler init failed", zap.Error(err))
	}

	notifyOpts := nrr.HandlerOptions{
		AppConfig:     cfg,
		Observability: obs,
		Logger:        log,
	}
	if publisher != nil {
		notifyOpts.Publisher = publisher
	}
	if emailSender != nil {
		notifyOpts.EmailSender = emailSender
	}
	notifyHandler, err := nrr.NewHandler(notifyOpts)
	if err != nil {
		zapLog.Fatal("notify-risk-review handler init failed", zap.Error(err))
	}

	workers := []worker{assessHandler, notifyHandler}
	for _, w := range workers {
		w.Register(camundaClient)
	}

	var ready atomic.Bool
	ready.Store(true)

	server := newHealthServer(cfg.Server.Port, camundaClient, &ready)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	ready.Store(false)
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

// openArtifactStore returns the configured store and a func releasing any
// connection it opened. Connections are only needed while loading.
func openArtifactStore(ctx context.Context, cfg *config.Config, log logger.Logger) (artifacts.Store, func(), error) {
	noop := func() {}
	a := cfg.Artifacts

	switch a.Source {
	case config.ArtifactSourceFile:
		return artifacts.NewFileStore(a.Dir), noop, nil

	case config.ArtifactSourcePostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		err = camunda.Retry(ctx, camunda.DefaultRetryConfig, func(attempt int) error {
			if err := pg.Ping(ctx); err != nil {
				log.Warn("PostgreSQL not ready", map[string]interface{}{"attempt": attempt + 1, "error": err.Error()})
				return err
			}
			return nil
		})
		if err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("postgres connection: %w", err)
		}
		store, err := artifacts.NewPostgresStore(pg, a.Table)
		if err != nil {
			pg.Close()
			return nil, nil, err
		}
		return store, func() { pg.Close() }, nil

	case config.ArtifactSourceRedis:
		rdb := database.NewRedis(cfg.Database.Redis)
		err := camunda.Retry(ctx, camunda.DefaultRetryConfig, func(attempt int) error {
			if err := rdb.Ping(ctx); err != nil {
				log.Warn("Redis not ready", map[string]interface{}{"attempt": attempt + 1, "error": err.Error()})
				return err
			}
			return nil
		})
		if err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("redis connection: %w", err)
		}
		return artifacts.NewRedisStore(rdb, a.KeyPrefix), func() { rdb.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown artifact source %q", a.Source)
	}
}

// buildPipeline loads the encoders (and the local model) once. The returned
// pipeline is shared read-only by every job goroutine.
func buildPipeline(ctx context.Context, cfg *config.Config, store artifacts.Store, log logger.Logger) (*pipeline.Pipeline, error) {
	loadCtx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.Artifacts.LoadTimeout))
	defer cancel()

	registry, err := artifacts.LoadRegistry(loadCtx, store, log)
	if err != nil {
		return nil, err
	}
	for _, f := range models.CategoricalFeatures {
		metrics.ArtifactsLoaded.WithLabelValues(artifacts.EncoderArtifact(f), cfg.Artifacts.Source).Set(1)
	}

	var classifier pipeline.Classifier
	switch cfg.Classifier.Mode {
	case config.ClassifierModeRemote:
		remote, err := pipeline.NewRemoteClassifier(loadCtx, cfg.Classifier.RemoteURL, config.GetDuration(cfg.Classifier.Timeout))
		if err != nil {
			return nil, err
		}
		classifier = remote
	default:
		ensemble, err := artifacts.LoadEnsemble(loadCtx, store, log)
		if err != nil {
			return nil, err
		}
		metrics.ArtifactsLoaded.WithLabelValues(artifacts.ModelArtifact, cfg.Artifacts.Source).Set(1)
		classifier = ensemble
	}

	return pipeline.New(registry, classifier), nil
}

func buildNotifiers(ctx context.Context, cfg *config.Config) (aws.Publisher, aws.EmailSender, error) {
	n := cfg.Notifications
	if !n.AnyEnabled() {
		return nil, nil, nil
	}

	awsCfg, err := aws.LoadConfig(ctx, n.AWS.Region)
	if err != nil {
		return nil, nil, err
	}

	var (
		publisher   aws.Publisher
		emailSender aws.EmailSender
	)
	if n.SNS.Enabled {
		publisher = aws.NewSNSClient(awsCfg)
	}
	if n.SES.Enabled {
		emailSender = aws.NewSESClient(awsCfg)
	}
	return publisher, emailSender, nil
}

func newHealthServer(port int, client *camunda.Client, ready *atomic.Bool) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, "shutting down")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := client.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "zeebe unreachable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
