package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/koonliang/stocktracker/internal/api"
	"github.com/koonliang/stocktracker/internal/config"
	"github.com/koonliang/stocktracker/internal/database"
	"github.com/koonliang/stocktracker/internal/repository"
	"github.com/koonliang/stocktracker/internal/service"
	"github.com/koonliang/stocktracker/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.DB.Path)

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	// Market data client
	marketData := yahoo.NewFinanceClient(cfg.Yahoo.ChartURL)

	// Create services
	systemService := service.NewSystemService(db)
	holdingService := service.NewHoldingService(holdingRepo, transactionRepo)
	transactionService := service.NewTransactionService(transactionRepo, holdingService, marketData)
	portfolioService := service.NewPortfolioService(holdingRepo, transactionRepo, marketData)
	performanceService := service.NewPerformanceService(holdingRepo, transactionRepo, marketData)
	csvImportService := service.NewCsvImportService(transactionService)
	demoService := service.NewDemoService(userRepo, transactionRepo, holdingRepo, holdingService, cfg.Demo.TTL)

	// Schedule daily demo-account cleanup at 02:00
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 2 * * *", func() {
		deleted, err := demoService.CleanupExpired()
		if err != nil {
			log.Printf("Demo account cleanup failed: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("Demo account cleanup completed. Deleted %d accounts", deleted)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule demo cleanup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Transaction: transactionService,
		Portfolio:   portfolioService,
		Performance: performanceService,
		CsvImport:   csvImportService,
		Demo:        demoService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
