package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/config"
	"github.com/octavia-ai/octavia/internal/api/handlers"
	"github.com/octavia-ai/octavia/internal/api/middleware"
	"github.com/octavia-ai/octavia/internal/api/routes"
	"github.com/octavia-ai/octavia/internal/cache"
	"github.com/octavia-ai/octavia/internal/concurrency"
	"github.com/octavia-ai/octavia/internal/logger"
	"github.com/octavia-ai/octavia/internal/metrics"
	"github.com/octavia-ai/octavia/internal/providers/llm"
	"github.com/octavia-ai/octavia/internal/providers/stt"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	pgrepo "github.com/octavia-ai/octavia/internal/repositories/postgres"
	"github.com/octavia-ai/octavia/internal/report"
	"github.com/octavia-ai/octavia/internal/services"
	"github.com/octavia-ai/octavia/internal/session"
	"github.com/octavia-ai/octavia/internal/storage"
	"github.com/octavia-ai/octavia/internal/voice"
	"github.com/octavia-ai/octavia/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init MongoDB
	mc, err := config.NewMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	mdb := mc.Database(cfg.MongoDB)
	if err := config.EnsureMongoIndexes(ctx, mdb); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	log.Info("MongoDB connected")

	// Init PostgreSQL
	pg, err := config.NewPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.MigratePostgres(pg); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	log.Info("PostgreSQL connected")

	// Init Redis
	rdb, err := config.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	defer rdb.Close()
	log.Info("Redis connected")

	var files storage.ObjectStore
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcs.Close()
		files = gcs
	} else {
		log.Warn("GCS_BUCKET not set, resume uploads are disabled")
	}

	sttP, err := stt.NewGoogleSpeech(ctx, stt.SpeechConfig{
		Encoding:     cfg.STTEncoding,
		SampleRateHz: cfg.STTSampleRate,
		Language:     cfg.STTLanguage,
	})
	if err != nil {
		log.Fatalf("speech init error: %v", err)
	}
	defer sttP.Close()
	llmP, err := llm.NewVertexGemini(ctx, llm.VertexConfig{
		ProjectID:         cfg.GCPProject,
		Location:          cfg.GCPLocation,
		Model:             cfg.LLMModel,
		SystemInstruction: voice.InterviewerInstruction,
		Timeout:           cfg.LLMTimeout,
	})
	if err != nil {
		log.Fatalf("vertex init error: %v", err)
	}
	defer llmP.Close()

	stores := mongorepo.NewStores(mdb)
	samples := pgrepo.NewConcurrencyRepo(pg)
	redisCache := cache.NewRedisCache(rdb, "octavia:cache").WithObserver(metrics.CacheLookup)

	conversations := services.NewConversationService(pgrepo.NewConversationRepo(pg))
	interviews := services.NewInterviewService(stores.Interviews, stores.Results)
	reports := services.NewReportService(services.ReportDeps{
		Interviews: stores.Interviews,
		Results:    stores.Results,
		Students:   stores.Students,
		Turns:      conversations,
		Generator:  report.NewGenerator(nil),
		Cache:      redisCache,
		CacheTTL:   cfg.ReportCacheTTL,
		Logger:     log,
	})

	tracker := voice.NewUsageTracker(rdb, cfg.ActiveSessionTTL)
	advisor := concurrency.NewAdvisor(cfg.ConcurrencyLimit, concurrency.HistorySource{
		Live:    tracker,
		History: samples,
	}, redisCache, 5*time.Minute)

	queue := workers.NewReportQueue(rdb, workers.DefaultReportStream)
	finisher := services.NewInterviewFinisher(interviews, stores.Students, queue, log)

	pool := &workers.ReportWorkerPool{
		Redis:      rdb,
		Reports:    reports,
		NumWorkers: cfg.ReportWorkers,
		Logger:     log,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("report workers error: %v", err)
	}

	monitor := &workers.ConcurrencyMonitor{
		Advisor:  advisor,
		Samples:  samples,
		Schedule: cfg.ConcurrencySpec,
		Logger:   log,
	}
	if err := monitor.Start(ctx); err != nil {
		log.Fatalf("concurrency monitor error: %v", err)
	}

	ws := handlers.NewInterviewWSHandler(handlers.InterviewWSDeps{
		Interviews: interviews,
		NewConversation: func() handlers.LiveConversation {
			return voice.NewCoach(sttP, llmP, conversations, cfg.STTLanguage, log)
		},
		Finisher: finisher,
		Slots:    tracker,
		Options: session.Options{
			MaxDuration:      cfg.MaxInterview,
			WarningThreshold: cfg.WarningThreshold,
			WarningDismiss:   cfg.WarningDismiss,
			TranscriptMode:   session.TranscriptMode(cfg.TranscriptMode),
			AssistantID:      cfg.AssistantID,
		},
		Logger: log,
	})

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, routes.Deps{
		Logger:       log,
		AuthEnabled:  cfg.JWTSecret != "",
		RequireRoles: cfg.RequireAdminClaims,
		Auth: middleware.AuthConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
		Report:       handlers.NewReportHandler(reports),
		Concurrency:  handlers.NewConcurrencyHandler(advisor, samples),
		Conversation: handlers.NewConversationHandler(conversations),
		Institution:  handlers.NewInstitutionHandler(services.NewInstitutionService(stores.Institutions)),
		Student:      handlers.NewStudentHandler(services.NewStudentService(stores.Students, stores.Institutions, cfg.EnforceEmailDomain)),
		Resume:       handlers.NewResumeHandler(services.NewResumeService(stores.Resumes, stores.Students, files, log), cfg.MaxResumeUploadMB),
		Interview:    handlers.NewInterviewHandler(interviews),
		Job:          handlers.NewJobHandler(services.NewJobService(stores.Jobs, stores.Applications)),
		Message:      handlers.NewMessageHandler(services.NewMessageService(stores.Messages, stores.Inquiries)),
		Billing:      handlers.NewBillingHandler(services.NewBillingService(stores.PaymentMethods, stores.Billing)),
		Analytics: handlers.NewAnalyticsHandler(services.NewAnalyticsService(services.AnalyticsDeps{
			Institutions:       stores.Institutions,
			Students:           stores.Students,
			Results:            stores.Results,
			ResumeViews:        stores.ResumeViews,
			ResumeAnalytics:    stores.ResumeAnalytics,
			InterviewAnalytics: stores.InterviewAnalytics,
		})),
		WS: ws,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown failed")
	}
	<-monitor.Stop().Done()
}
