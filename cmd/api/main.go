package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"database/sql"

	"github.com/finsight/invoice-analytics/internal/config"
	"github.com/finsight/invoice-analytics/internal/handler"
	"github.com/finsight/invoice-analytics/internal/integrations/ecb"
	"github.com/finsight/invoice-analytics/internal/middleware"
	"github.com/finsight/invoice-analytics/internal/repository"
	"github.com/finsight/invoice-analytics/internal/scheduler"
	"github.com/finsight/invoice-analytics/internal/service"
	emailutil "github.com/finsight/invoice-analytics/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	mailer := emailutil.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, mailer)
	h := handler.NewHandler(svc)
	ecbClient := ecb.NewClient(cfg, logger)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/invoices", h.CreateInvoice).Methods("POST")
	authRouter.HandleFunc("/invoices", h.ListInvoices).Methods("GET")
	authRouter.HandleFunc("/invoices/{id}/risk", h.InvoiceRisk).Methods("GET")
	authRouter.HandleFunc("/payments", h.RecordPayment).Methods("POST")
	authRouter.HandleFunc("/payments", h.ListPayments).Methods("GET")
	authRouter.HandleFunc("/analytics/summary", h.Summary).Methods("GET")
	authRouter.HandleFunc("/analytics/forecast", h.Forecast).Methods("GET")
	// ECB reference rate endpoint
	r.HandleFunc("/fx-rate/{currency}", func(w http.ResponseWriter, r *http.Request) {
		rate, err := ecbClient.GetRate(mux.Vars(r)["currency"])
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"rate": rate})
	}).Methods("GET")

	// Start reminder scheduler
	sched := scheduler.NewScheduler(svc, logger)
	if err := sched.Start(cfg.ReminderSchedule); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// CORS for the browser frontend
	c := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      c.Handler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
