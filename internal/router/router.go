package router

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"capital-tracker/internal/handlers"
	"capital-tracker/internal/middleware"
	"capital-tracker/internal/services"
)

func SetupRouter(db *sql.DB, logger zerolog.Logger, jwtSecret string) *mux.Router {
	capitalService := services.NewCapitalService(db, logger)
	transactionService := services.NewTransactionService(db, logger, capitalService)

	transactionHandler := handlers.NewTransactionHandler(transactionService, logger)
	capitalHandler := handlers.NewCapitalHandler(capitalService, logger)

	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		logger.Warn().Msg("JWT_SECRET not set, using default key")
	}

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(10), 20)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(rateLimiter.Middleware())

	api := r.PathPrefix("/api").Subrouter()

	transactions := api.PathPrefix("/transactions").Subrouter()
	transactions.Use(middleware.Authentication(jwtSecret, logger))
	transactions.Use(middleware.RequestValidation())
	transactions.HandleFunc("", transactionHandler.Create).Methods("POST")
	transactions.HandleFunc("", transactionHandler.List).Methods("GET")
	transactions.HandleFunc("/{id}", transactionHandler.Get).Methods("GET")
	transactions.HandleFunc("/{id}", transactionHandler.Patch).Methods("PATCH")
	transactions.HandleFunc("/{id}", transactionHandler.Delete).Methods("DELETE")

	settings := api.PathPrefix("/settings").Subrouter()
	settings.Use(middleware.Authentication(jwtSecret, logger))
	settings.Use(middleware.RequestValidation())
	settings.HandleFunc("/capital", capitalHandler.Get).Methods("GET")
	settings.HandleFunc("/capital", capitalHandler.TopUp).Methods("PUT")
	settings.HandleFunc("/capital/reset", capitalHandler.Reset).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}
