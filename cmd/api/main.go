package main

import (
	"fmt"
	"net/http"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/phonebook-dev/phonebook-service/internal/config"
	"github.com/phonebook-dev/phonebook-service/internal/handler"
	"github.com/phonebook-dev/phonebook-service/internal/middleware"
	"github.com/phonebook-dev/phonebook-service/internal/repository"
	"github.com/phonebook-dev/phonebook-service/internal/service"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

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
	if err := repo.Migrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	svc := service.NewService(repo, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/contacts").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("", h.CreateContact).Methods("POST")
	authRouter.HandleFunc("", h.ListContacts).Methods("GET")
	authRouter.HandleFunc("/search", h.SearchContacts).Methods("GET")
	authRouter.HandleFunc("/stats", h.ContactStats).Methods("GET")
	authRouter.HandleFunc("/{id:[0-9]+}", h.GetContact).Methods("GET")
	authRouter.HandleFunc("/{id:[0-9]+}", h.UpdateContact).Methods("PUT")
	authRouter.HandleFunc("/{id:[0-9]+}", h.DeleteContact).Methods("DELETE")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
