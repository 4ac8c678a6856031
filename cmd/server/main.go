package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"rowforge/internal/config"
	"rowforge/internal/email"
	"rowforge/internal/server/api"
	"rowforge/internal/server/hub"
	"rowforge/internal/server/middleware"
	"rowforge/internal/server/store"
	"rowforge/internal/storage"
	"rowforge/internal/worker"
)

func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 0. Load Config
	cfg := config.Load()

	slog.Info("Starting RowForge Server", "env", cfg.AppEnv)

	// 1. Initialize Store (Database)
	if cfg.MySQLDSN == "" {
		slog.Error("MYSQL_DSN not set")
		os.Exit(1)
	}

	st, err := store.NewStore(cfg.MySQLDSN)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}

	// 2. Run Migration
	if err := st.InitSchema(); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database Connected & Schema Initialized")

	// 3. Storage Provider
	provider := buildStorage(cfg)

	// 4. Email Sender
	var sender email.Sender
	if cfg.SMTPHost != "" {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		slog.Info("Email notifications via SMTP", "host", cfg.SMTPHost)
	} else {
		sender = email.NewLogSender()
		slog.Warn("SMTP_HOST not set, emails are logged only")
	}

	// 5. Hub + Worker Pool
	h := hub.NewHub()

	pool := worker.NewPool(cfg.WorkerCount, cfg.MaxParseConcurrency, provider, sender, cfg.Compression, cfg.AttachFile)
	pool.OnStatus = func(j *worker.ConversionJob) {
		if err := st.SaveJob(api.JobRow(j)); err != nil {
			slog.Error("Job persist failed", "job_id", j.ID, "error", err)
		}
		var records int64
		if j.Stats != nil {
			records = j.Stats.RowsProcessed
		}
		h.Broadcast(hub.JobUpdate(j.ID, j.SourceName, string(j.Status), records, len(j.Report)))
	}
	pool.Start()

	// 6. Handlers, Routes & Middleware
	handler := api.NewHandler(cfg, st, h, pool, provider)
	requireJWT := middleware.RequireJWT(cfg.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("/convert", handler.HandleConvert)
	mux.Handle("/jobs", requireJWT(http.HandlerFunc(handler.HandleListJobs)))
	mux.HandleFunc("/jobs/", handler.HandleGetJob) // Status polling by job UUID

	mux.HandleFunc("/files/", handler.HandleDownload)
	mux.HandleFunc("/agent/control", handler.HandleControl)
	mux.HandleFunc("/agent/data", handler.HandleData)
	mux.HandleFunc("/dashboard/stream", handler.HandleDashboard)
	mux.HandleFunc("/auth/register", handler.HandleRegister)
	mux.HandleFunc("/auth/verify", handler.HandleVerify)
	mux.Handle("/auth/keys/create", requireJWT(http.HandlerFunc(handler.HandleCreateKey)))
	mux.Handle("/auth/keys/list", requireJWT(http.HandlerFunc(handler.HandleListKeys)))

	finalHandler := middleware.CORS(cfg.AllowedOrigins, cfg.AppEnv)(mux)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: finalHandler,
	}

	go func() {
		slog.Info("Server listening", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// 7. Shutdown: stop accepting requests, then drain the pool
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt

	slog.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
	pool.Stop()
}

func buildStorage(cfg *config.Config) storage.Provider {
	if cfg.StorageType == "s3" {
		// Credentials come from the standard AWS env variables.
		opts := s3.Options{
			Region:       cfg.AWSRegion,
			UsePathStyle: cfg.S3PathStyle,
			Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
					SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				}, nil
			}),
		}
		if cfg.S3Endpoint != "" {
			opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		slog.Info("Storage: S3", "bucket", cfg.S3Bucket, "region", cfg.AWSRegion)
		return storage.NewS3Provider(s3.New(opts), cfg.S3Bucket)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.ServerPort
	}
	slog.Info("Storage: local", "path", cfg.LocalStoragePath, "base_url", baseURL)
	return storage.NewLocalProvider(cfg.LocalStoragePath, baseURL)
}
