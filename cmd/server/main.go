// Package main — ledger service entry point.
// Loads configuration, wires the application and runs the scheduler.
// Supports graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"seashell.io/investment-backend/internal/app"
	"seashell.io/investment-backend/internal/config"
)

func main() {
	runNow := flag.Bool("run-accrual", false, "run one accrual batch immediately after startup")
	flag.Parse()

	setupLogging()

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on the environment")
	}

	log.Info("=== Ledger service starting ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Could not load configuration")
	}
	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize application")
	}
	defer application.DB.Close()

	if err := application.Scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("Could not start scheduler")
	}
	defer application.Scheduler.Stop()

	go serveMetrics(cfg.MetricsAddr)

	if *runNow {
		log.Info("Running accrual batch on demand")
		application.Scheduler.RunAccrual(ctx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("=== Ledger service ready ===")

	sig := <-quit
	log.Infof("Received %s, shutting down...", sig)
	cancel()

	log.Info("=== Ledger service stopped ===")
}

// serveMetrics exposes the Prometheus registry.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Infof("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("Metrics listener stopped")
	}
}

// setupLogging configures the log format.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
