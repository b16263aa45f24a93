package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"incident-verifier/internal/clients"
	"incident-verifier/internal/config"
	"incident-verifier/internal/logger"
	"incident-verifier/internal/models"
	"incident-verifier/internal/retrieval"
	"incident-verifier/internal/services"
	"incident-verifier/internal/verify"
	"incident-verifier/pkg/kafka"
)

// VerificationWorker consumes verification jobs from Kafka and runs the
// evidence pipeline for each one.
type VerificationWorker struct {
	kafkaService *kafka.Service
	processor    *services.JobProcessor
	groupID      string
	running      bool
}

func NewVerificationWorker(db *gorm.DB, cfg *config.Config, kafkaService *kafka.Service) *VerificationWorker {
	searchClient := clients.NewSearchClient(cfg)

	var retriever retrieval.Retriever
	if cfg.OfflineRetrieval || cfg.SerperAPIKey == "" {
		logger.Log.Warn("No search API key configured, using offline retrieval")
		retriever = retrieval.NewOfflineRetriever()
	} else {
		retriever = retrieval.NewLiveRetriever(searchClient)
	}

	collector := services.NewEvidenceCollector(
		searchClient,
		clients.NewFactCheckClient(cfg.FactCheckAPIKey),
		clients.NewKnowledgeClient(),
		cfg.EvidenceTimeout,
	)

	orchestrator := verify.NewVerificationOrchestrator(cfg.Thresholds(), verify.NewLogObserver(""))

	incidentService := services.NewIncidentService(db, cfg)
	verificationService := services.NewVerificationService(db, cfg, kafkaService)

	return &VerificationWorker{
		kafkaService: kafkaService,
		processor: services.NewJobProcessor(
			incidentService,
			verificationService,
			retriever,
			collector,
			orchestrator,
			cfg.MaxEvidenceItems,
		),
		groupID: cfg.KafkaGroupID,
		running: false,
	}
}

func (w *VerificationWorker) Run(ctx context.Context) error {
	logger.Log.Info("Starting verification worker")

	w.running = true

	consumer := w.kafkaService.CreateConsumer(w.groupID)
	defer consumer.Close()

	logger.Log.Info("Worker ready to process verification jobs")

	for w.running {
		select {
		case <-ctx.Done():
			logger.Log.Info("Context cancelled, stopping worker")
			return ctx.Err()
		default:
			job, err := consumer.ReadVerificationJob(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.LogErrorWithStack(err, map[string]interface{}{
					"operation": "kafka_read_job",
				})
				continue
			}

			if err := w.processor.ProcessJob(ctx, job); err != nil {
				logger.LogErrorWithStack(err, map[string]interface{}{
					"job_id":    job.JobID,
					"operation": "process_verification_job",
				})
			}
		}
	}

	return nil
}

func (w *VerificationWorker) Stop() {
	logger.Log.Info("Stopping verification worker")
	w.running = false
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)

			logger.Log.WithFields(map[string]interface{}{
				"panic":       r,
				"stack_trace": string(buf[:n]),
			}).Fatal("Worker application panicked")
		}
	}()

	logger.Log.Info("Starting Incident Verification Worker")

	cfg, err := config.Load()
	if err != nil {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"operation": "config_load",
		})
		logger.Log.WithError(err).Fatal("Failed to load worker configuration")
	}
	logger.SetLevel(cfg.LogLevel)
	logger.Log.WithField("log_level", cfg.LogLevel).Info("Worker configuration loaded")

	logger.Log.WithField("database_url", maskDatabaseURL(cfg.DatabaseURL)).Info("Worker connecting to database")
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"operation":    "database_connect",
			"database_url": maskDatabaseURL(cfg.DatabaseURL),
		})
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to get database SQL instance")
	}
	if err := sqlDB.Ping(); err != nil {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"operation": "database_ping",
		})
		logger.Log.WithError(err).Fatal("Failed to ping database")
	}
	logger.Log.Info("Worker database connected and pingable")

	if err := models.AutoMigrate(db); err != nil {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"operation": "database_migrate",
		})
		logger.Log.WithError(err).Fatal("Failed to migrate database")
	}

	logger.Log.WithFields(map[string]interface{}{
		"kafka_servers": cfg.KafkaBootstrapServers,
		"topic":         cfg.KafkaTopic,
		"group_id":      cfg.KafkaGroupID,
	}).Info("Worker initializing Kafka service")
	kafkaService := kafka.NewService(kafka.Config{
		BootstrapServers: cfg.KafkaBootstrapServers,
		Topic:            cfg.KafkaTopic,
	})
	defer func() {
		if err := kafkaService.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close worker Kafka service")
		}
	}()

	worker := NewVerificationWorker(db, cfg, kafkaService)

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Log.Info("Worker shutdown signal received")
		worker.Stop()
		cancel()
	}()

	logger.Log.Info("Starting verification worker, waiting for jobs")

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"operation": "worker_run",
		})
		logger.Log.WithError(err).Fatal("Worker failed")
	}

	logger.Log.Info("Verification worker stopped gracefully")
}

// maskDatabaseURL masks sensitive information in database URL for logging
func maskDatabaseURL(dbURL string) string {
	if len(dbURL) > 20 {
		return dbURL[:10] + "***masked***" + dbURL[len(dbURL)-10:]
	}
	return "***masked***"
}
