package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"mini-ecommerce/internal/client"
	"mini-ecommerce/internal/config"
	"mini-ecommerce/internal/repository"
	"mini-ecommerce/internal/server"
	"mini-ecommerce/internal/service"
	"mini-ecommerce/pkg/rabbitmq"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		log.Fatal("database init: ", err)
	}

	var events rabbitmq.Publisher = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			log.Fatal("rabbitmq init: ", err)
		}
		defer mqClient.Close()
		events = mqClient
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reportRepo := repository.NewReportRepository(db)

	if err := productRepo.Seed(context.Background()); err != nil {
		log.Println("seed products: ", err)
	}

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, tokenTTL)
	catalogService := service.NewCatalogService(productRepo)
	checkoutService := service.NewCheckoutService(db, userRepo, productRepo, orderRepo, events)
	reportService := service.NewReportService(db, reportRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(authService, catalogService, checkoutService, reportService)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
