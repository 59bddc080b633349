package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"reading-fluency-platform/backend/internal/apigateway"
	"reading-fluency-platform/backend/internal/auth"
	"reading-fluency-platform/backend/internal/batchengine"
	"reading-fluency-platform/backend/internal/config"
	"reading-fluency-platform/backend/internal/coreengine/evaluationengine"
	"reading-fluency-platform/backend/internal/coreengine/fluencymetrics"
	"reading-fluency-platform/backend/internal/coreengine/pausedetector"
	"reading-fluency-platform/backend/internal/coreengine/vendoradapters"
	"reading-fluency-platform/backend/internal/datastore"
	"reading-fluency-platform/backend/internal/evaluationmanagement"
	"reading-fluency-platform/backend/internal/logging"
	"reading-fluency-platform/backend/internal/objectstore"
)

func main() {
	// Local development convenience only; a missing .env is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "optional YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootstrap := logging.New("info", "console")
		bootstrap.Fatal().Err(err).Msg("configuration error")
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := datastore.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	if err := datastore.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	artifacts, err := buildArtifactStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("artifact store setup failed")
	}

	adapters, err := vendoradapters.BuildAdapters(adapterSettings(cfg), logging.Component(log, "adapters"))
	if err != nil {
		log.Fatal().Err(err).Msg("adapter setup failed")
	}

	records := datastore.NewEvaluationRecordStore(db)
	runs := datastore.NewBatchRunStore(db)

	engine := &evaluationengine.Engine{
		Transcriber: adapters.Transcriber,
		Transform:   adapters.Transform,
		Scorer:      adapters.Scorer,
		Traces:      adapters.Traces,
		Records:     records,
		Artifacts:   artifacts,
		Settings:    engineSettings(cfg),
		Log:         logging.Component(log, "engine"),
	}
	orchestrator := &batchengine.Orchestrator{
		Engine:      engine,
		Runs:        runs,
		WorkerLimit: cfg.Batch.WorkerLimit,
		Log:         logging.Component(log, "batch"),
	}

	authService, err := auth.NewService(auth.Credentials{
		Username: cfg.Server.AdminUsername,
		Password: cfg.Server.AdminPassword,
	}, logging.Component(log, "auth"))
	if err != nil {
		log.Fatal().Err(err).Msg("auth setup failed")
	}

	if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := apigateway.SetupRouter(apigateway.Handlers{
		Auth: authService,
		Evaluations: &evaluationmanagement.EvaluationHandlers{
			Engine:  engine,
			Records: records,
			Log:     logging.Component(log, "evaluations"),
		},
		Batches: &evaluationmanagement.BatchHandlers{
			Orchestrator: orchestrator,
			Runs:         runs,
			Manifest:     cfg.Batch.ManifestPath,
			InputDir:     cfg.Batch.InputDir,
			Log:          logging.Component(log, "batches"),
		},
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func buildArtifactStore(ctx context.Context, cfg *config.Config) (objectstore.ArtifactStore, error) {
	policy := objectstore.CollisionPolicy(cfg.Storage.CollisionPolicy)
	switch cfg.Storage.Backend {
	case "minio":
		client, err := minio.New(cfg.Storage.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.Minio.AccessKey, cfg.Storage.Minio.SecretKey, ""),
			Secure: cfg.Storage.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return objectstore.NewMinioStore(ctx, client, cfg.Storage.Minio.Bucket, policy)
	default:
		return objectstore.NewLocalStore(cfg.Storage.OutputDir, policy)
	}
}

func adapterSettings(cfg *config.Config) vendoradapters.Settings {
	svc := cfg.Services
	bands := make([]vendoradapters.WPMBand, 0, len(cfg.Evaluation.WPMBands))
	for _, b := range cfg.Evaluation.WPMBands {
		bands = append(bands, vendoradapters.WPMBand{
			Level:  vendoradapters.Level(b.Level),
			MinWPM: b.MinWPM,
			MaxWPM: b.MaxWPM,
		})
	}
	return vendoradapters.Settings{
		TranscriberProvider: svc.Transcriber,
		Whisper: vendoradapters.WhisperConfig{
			URL:      svc.WhisperURL,
			Model:    svc.WhisperModel,
			Language: svc.Language,
			Timeout:  svc.Timeout,
		},
		OpenAI: vendoradapters.OpenAIConfig{
			APIKey:  svc.OpenAIAPIKey,
			BaseURL: svc.OpenAIBaseURL,
			Timeout: svc.Timeout,
		},
		TransformProvider: svc.Transform,
		TransformURL:      svc.TransformURL,
		TransformTimeout:  svc.Timeout,
		ScorerProvider:    svc.Scorer,
		ScorerModel:       svc.ScorerModel,
		WPMBands:          bands,
		TraceProvider:     svc.Traces,
		TraceURL:          svc.TraceURL,
		TraceTimeout:      svc.Timeout,
	}
}

func engineSettings(cfg *config.Config) evaluationengine.Settings {
	eval := cfg.Evaluation
	return evaluationengine.Settings{
		MatchThreshold: eval.MatchThreshold,
		SilenceSource:  eval.SilenceSource,
		Thresholds: pausedetector.Thresholds{
			PitchFloorHz:     eval.PitchFloorHz,
			IntensityFloorDB: eval.IntensityFloorDB,
			MinPauseSeconds:  eval.MinPauseSeconds,
		},
		Amplitude: fluencymetrics.AmplitudeOptions{
			FloorDB:           eval.AmplitudeFloorDB,
			MinSilenceSeconds: eval.AmplitudeMinSilenceSeconds,
		},
	}
}
