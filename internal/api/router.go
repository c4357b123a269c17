package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koonliang/stocktracker/internal/api/handlers"
	custommiddleware "github.com/koonliang/stocktracker/internal/api/middleware"
	"github.com/koonliang/stocktracker/internal/config"
	"github.com/koonliang/stocktracker/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System      *service.SystemService
	Transaction *service.TransactionService
	Portfolio   *service.PortfolioService
	Performance *service.PerformanceService
	CsvImport   *service.CsvImportService
	Demo        *service.DemoService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		// Demo accounts are created without an identity; the response
		// carries the user ID for subsequent requests.
		demoHandler := handlers.NewDemoHandler(svc.Demo)
		r.Post("/demo", demoHandler.CreateDemoAccount)

		// Everything below requires a user identity
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireUser)

			r.Route("/portfolio", func(r chi.Router) {
				portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio, svc.Performance)
				r.Get("/", portfolioHandler.Portfolio)
				r.Get("/performance", portfolioHandler.Performance)
			})

			r.Route("/transactions", func(r chi.Router) {
				transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
				csvImportHandler := handlers.NewCsvImportHandler(svc.CsvImport)

				r.Get("/", transactionHandler.AllTransactions)
				r.Post("/", transactionHandler.CreateTransaction)
				r.Get("/export", transactionHandler.ExportTransactions)
				r.Get("/validate-ticker/{symbol}", transactionHandler.ValidateTicker)

				r.Route("/import", func(r chi.Router) {
					r.Post("/suggest-mappings", csvImportHandler.SuggestMappings)
					r.Post("/preview", csvImportHandler.PreviewImport)
					r.Post("/execute", csvImportHandler.ExecuteImport)
				})

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", transactionHandler.GetTransaction)
					r.Put("/", transactionHandler.UpdateTransaction)
					r.Delete("/", transactionHandler.DeleteTransaction)
				})
			})
		})
	})

	return r
}
