package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-inventory-service/handlers"
	"order-inventory-service/internal/ledger"
	"order-inventory-service/internal/stores/kafka"
	"order-inventory-service/internal/stores/postgres"

	"github.com/joho/godotenv"
)

func main() {
	if err := startApp(); err != nil {
		slog.Error("service stopped", slog.String("Error", err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, continuing with environment")
	}

	db, err := postgres.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	o, err := ledger.NewConf(db)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := o.Seed(ctx); err != nil {
		return err
	}
	slog.Info("database migrated and seeded")

	// Order lifecycle events are optional; the service runs without a
	// broker when KAFKA_HOST is unset.
	var k *kafka.Conf
	if host := os.Getenv("KAFKA_HOST"); host != "" {
		k, err = kafka.NewConf(host)
		if err != nil {
			return err
		}
		defer k.Close()
		slog.Info("kafka producer connected", slog.String("Host", host))
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	api := http.Server{
		Addr:         ":" + port,
		Handler:      handlers.API(os.Getenv("SERVICE_ENDPOINT_PREFIX"), o, k),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server started", slog.String("Port", port))
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-shutdown:
		slog.Info("shutdown initiated", slog.String("Signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.Shutdown(ctx); err != nil {
			if er := api.Close(); er != nil {
				return er
			}
			return err
		}
	}
	return nil
}
