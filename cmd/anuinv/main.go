package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ethiosuite/internal/api"
	"ethiosuite/internal/config"
	"ethiosuite/internal/inventory"
	"ethiosuite/internal/llm"
	"ethiosuite/internal/monitoring"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	// The assistant is optional; the factory runs fine without a key.
	var analyzer api.Analyzer
	if cfg.LLM.APIKey != "" {
		service, err := llm.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			log.Fatalf("Failed to initialize LLM: %v", err)
		}
		analyzer = service
	} else {
		log.Println("OPENAI_API_KEY not set, inventory assistant disabled")
	}

	ledger := inventory.NewLedger()

	hub := api.NewHub()
	go hub.Run()
	ledger.SetTransactionHook(func(tx inventory.Transaction) {
		monitoring.TransactionsTotal.WithLabelValues(string(tx.Type)).Inc()
		hub.BroadcastTransaction(tx)
	})

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewInventoryAPI(ledger, hub, analyzer, api.AuthConfig{
			JWTSecret: cfg.Auth.JWTSecret,
			TokenTTL:  time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
		}).Router,
	}

	go startMetricsServer(cfg.Server.MetricsPort)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting AnuInv API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
