package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/notifications"
	"github.com/insightpipe/scout/internal/research"
	"github.com/insightpipe/scout/internal/scheduler"
	"github.com/insightpipe/scout/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	configPath := os.Getenv("SCOUT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.NewEntry(logger)

	log.Info("Starting scout daemon")

	store, err := storage.NewFilesystemStorage(cfg.Storage.ProcessedDir, log.WithField("component", "storage"))
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	var archive storage.StorageInterface
	if cfg.Storage.AzureAccount != "" {
		azure, err := storage.NewAzureStorage(cfg.Storage.AzureAccount, cfg.Storage.AzureContainer, log.WithField("component", "archive"))
		if err != nil {
			log.Errorf("Failed to initialize Azure archive, continuing without it: %v", err)
		} else {
			archive = azure
		}
	}

	notifier := notifications.NewService(cfg.Notifications, log.WithField("component", "notifications"))
	service := research.NewService(cfg, store, archive, notifier, log.WithField("component", "research"))

	schedulerService := scheduler.NewService(cfg.ReportSchedule, service, log.WithField("component", "scheduler"))
	if err := schedulerService.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	router := mux.NewRouter()
	router.HandleFunc("/healthz", healthzHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(service)).Methods("GET")
	router.HandleFunc("/trigger", triggerHandler(service, log)).Methods("POST")
	router.HandleFunc("/reports", reportsHandler(service)).Methods("GET")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}

func metricsHandler(service *research.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(service.MetricsJSON()))
	}
}

func triggerHandler(service *research.Service, log *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := service.RunScheduled(context.Background()); err != nil {
				log.Errorf("Triggered research run failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message":"Research run triggered"}`))
	}
}

func reportsHandler(service *research.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := service.ListReports()
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
			return
		}
		if names == nil {
			names = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]string{"reports": names})
	}
}
