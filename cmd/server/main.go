package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/wooshnp/crypto-wallet-management/internal/adapter/coincap"
	"github.com/wooshnp/crypto-wallet-management/internal/adapter/httpapi"
	"github.com/wooshnp/crypto-wallet-management/internal/adapter/repository/postgres"
	"github.com/wooshnp/crypto-wallet-management/internal/usecase/discovery"
	"github.com/wooshnp/crypto-wallet-management/internal/usecase/priceupdate"
	"github.com/wooshnp/crypto-wallet-management/internal/usecase/pricing"
	"github.com/wooshnp/crypto-wallet-management/internal/usecase/simulation"
	"github.com/wooshnp/crypto-wallet-management/internal/usecase/wallet"
)

const (
	defaultAPIToken = "dev-token"
	defaultHTTPAddr = ":8080"
)

func main() {
	// 1. Setup Database
	dbConnStr := os.Getenv("DB_CONN_STR")
	if dbConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		host := envOrDefault("DB_HOST", "localhost")
		port := envOrDefault("DB_PORT", "5432")
		user := envOrDefault("DB_USER", "postgres")
		password := envOrDefault("DB_PASSWORD", "postgres")
		dbname := envOrDefault("DB_NAME", "cryptowallet")

		dbConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	db, err := postgres.NewDB(dbConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to apply database schema: %v", err)
	}

	// 2. Initialize Repositories (Postgres)
	walletRepo := postgres.NewWalletRepository(db)
	assetRepo := postgres.NewAssetRepository(db)
	historyRepo := postgres.NewPriceHistoryRepository(db)

	// 3. Initialize CoinCap client and services (Use Cases)
	client := coincap.NewClient(os.Getenv("COINCAP_BASE_URL"), &http.Client{Timeout: 10 * time.Second})
	resolver := pricing.NewResolver(client)
	pricingService := pricing.NewPricingService(client, resolver)
	walletService := wallet.NewWalletService(walletRepo, assetRepo, historyRepo, pricingService)
	simulationService := simulation.NewSimulationService(pricingService, envBool("SIMULATION_USE_MARKET_PRICE", false))
	discoveryService := discovery.NewDiscoveryService(client)

	updateService := priceupdate.NewPriceUpdateService(assetRepo, historyRepo, pricingService, priceupdate.Config{
		Enabled:    envBool("PRICE_UPDATE_ENABLED", true),
		Interval:   envDuration("PRICE_UPDATE_INTERVAL", time.Minute),
		MaxWorkers: envInt("PRICE_UPDATE_MAX_WORKERS", 3),
	})
	stopUpdater := updateService.Start(ctx)
	defer stopUpdater()

	// 4. Start HTTP Server
	apiToken := envOrDefault("API_TOKEN", defaultAPIToken)
	addr := envOrDefault("HTTP_ADDR", defaultHTTPAddr)

	apiServer := httpapi.NewServer(walletService, simulationService, discoveryService)
	server := &http.Server{
		Addr:    addr,
		Handler: apiServer.Handler(apiToken),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP server: %v", err)
		}
	}()

	// Graceful shutdown
	waitForShutdown(server)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Fatalf("Invalid value for %s: %q", key, raw)
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid value for %s: %q", key, raw)
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid value for %s: %q", key, raw)
	}
	return value
}
