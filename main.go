package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"wolt-report-service/internal/app"
	"wolt-report-service/internal/config"
	httpapi "wolt-report-service/internal/http"
	"wolt-report-service/internal/logger"
	"wolt-report-service/internal/queue"
	"wolt-report-service/internal/report"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		queueClient *queue.Client
		extra       []report.Option
	)
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err == nil {
			if err = queue.EnsureReportTopology(qc); err != nil {
				_ = qc.Close()
			}
		}
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq setup failed", zap.Error(err))
			}
			log.Warn("rabbitmq setup failed; continuing without events", zap.Error(err))
		} else {
			queueClient = qc
			defer qc.Close()
			extra = append(extra, report.WithPublisher(queue.NewPublisher(qc)))
			log.Info("rabbitmq enabled", zap.String("exchange", queue.EventsExchange))
		}
	} else {
		log.Info("report events disabled (RABBITMQ_URL is empty)")
	}

	a, err := app.Build(ctx, cfg, log, extra...)
	if err != nil {
		log.Fatal("report pipeline setup failed", zap.Error(err))
	}
	defer a.Close()

	if queueClient != nil && cfg.RabbitMQWorkerMode == "daemon" {
		log.Info("report worker enabled", zap.String("queue", queue.RequestsQueue))
		go func() {
			if err := queue.RunReportWorker(ctx, queueClient, a.Service, log); err != nil && ctx.Err() == nil {
				log.Error("report worker stopped", zap.Error(err))
			}
		}()
	} else if queueClient != nil {
		log.Info("report worker disabled", zap.String("mode", cfg.RabbitMQWorkerMode))
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(log, cfg, a.Service),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RenderTimeout*time.Duration(cfg.RenderRetries+1) + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("report api ready", zap.String("base", "/api"))
		log.Info("report service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
