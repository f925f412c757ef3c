// Command smrosd is the hosted Mall Readiness service. It serves the
// assessment and gate API, Prometheus metrics, and a health check.
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/smros/smros/internal/api"
	"github.com/smros/smros/internal/assessment"
	"github.com/smros/smros/internal/evidence"
	"github.com/smros/smros/internal/platform"
	"github.com/smros/smros/internal/store"
	"github.com/smros/smros/pkg/config"
	"github.com/smros/smros/pkg/probe"
	"github.com/smros/smros/pkg/rules"
	"github.com/smros/smros/pkg/scoring"
)

type daemonConfig struct {
	Port        string
	DatabaseURL string
	APIKey      string
	ConfigPath  string

	LocalStoragePath string
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	GCSBucket        string
}

func loadDaemonConfig() daemonConfig {
	return daemonConfig{
		Port:        envOrDefault("PORT", "8080"),
		DatabaseURL: envOrDefault("DATABASE_URL", "postgres://localhost:5432/smros?sslmode=disable"),
		APIKey:      os.Getenv("SMROS_API_KEY"),
		ConfigPath:  os.Getenv("SMROS_CONFIG"),

		LocalStoragePath: envOrDefault("LOCAL_STORAGE_PATH", "/tmp/smros-data"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
	}
}

func main() {
	dcfg := loadDaemonConfig()
	ctx := context.Background()

	db, err := sql.Open("postgres", dcfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	cfg, err := config.Load(dcfg.ConfigPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	registry := rules.Default()
	registry, err = registry.ApplyWeightOverrides(cfg.Scoring.Weights)
	if err != nil {
		log.Fatalf("apply weight overrides: %v", err)
	}
	engine := scoring.NewEngine(registry, &scoring.CustomScorers{
		Probe:        probe.NewHTTPProbe(),
		ProbeTimeout: cfg.ProbeTimeout(),
		MinFollowers: cfg.Scoring.MinFollowers,
	})

	// Session memory in front, Postgres documents behind it.
	remote := store.NewRemoteTier(db)
	adapter := store.NewAdapter(store.NewMemoryTier(), remote)

	svc := assessment.NewService(registry, engine, adapter, probe.NewDNSResolver(), cfg, db, nil)

	storage := buildStorage(ctx, dcfg)
	metrics := api.NewMetrics(nil)
	handler := api.NewHandler(svc, remote, storage, nil, metrics)

	apiMux := http.NewServeMux()
	handler.RegisterRoutes(apiMux)

	// Health and metrics stay outside the API key.
	auth := api.APIKeyAuth(dcfg.APIKey)
	mux := http.NewServeMux()
	mux.Handle("/api/", auth(apiMux))
	mux.HandleFunc("GET /healthz", healthHandler(db))
	mux.Handle("GET /metrics", metrics.HTTPHandler())

	srv := &http.Server{
		Addr:              ":" + dcfg.Port,
		Handler:           api.CORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("starting smrosd on :%s", dcfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-sigCtx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// buildStorage selects the evidence document backend: GCS, then S3,
// then the local filesystem.
func buildStorage(ctx context.Context, dcfg daemonConfig) evidence.StorageClient {
	if dcfg.GCSBucket != "" {
		s, err := evidence.NewGCSStorage(ctx, dcfg.GCSBucket)
		if err != nil {
			log.Fatalf("init GCS storage: %v", err)
		}
		log.Printf("document storage: gcs bucket %s", dcfg.GCSBucket)
		return s
	}
	if dcfg.S3Bucket != "" {
		s, err := evidence.NewS3Storage(ctx, evidence.S3Config{
			Bucket:   dcfg.S3Bucket,
			Region:   dcfg.S3Region,
			Endpoint: dcfg.S3Endpoint,
		})
		if err != nil {
			log.Fatalf("init S3 storage: %v", err)
		}
		log.Printf("document storage: s3 bucket %s", dcfg.S3Bucket)
		return s
	}
	log.Printf("document storage: local path %s", dcfg.LocalStoragePath)
	return evidence.NewLocalStorage(dcfg.LocalStoragePath)
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
