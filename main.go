package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pf-engine/config"
	"pf-engine/factor"
)

type Server struct {
	db         *pgxpool.Pool
	router     *mux.Router
	httpServer *http.Server
	cfg        *config.Config
	engine     *factor.Engine
}

type RefreshResponse struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type RefreshStatus struct {
	RunID         string     `json:"run_id"`
	Status        string     `json:"status"`
	Stage         string     `json:"stage,omitempty"`
	ParksTotal    int        `json:"parks_total"`
	ParksComputed int        `json:"parks_computed"`
	Progress      float64    `json:"progress"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Error         string     `json:"error,omitempty"`
}

func NewServer(cfg *config.Config) (*Server, error) {
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	dbConfig.MaxConns = int32(cfg.Workers * 2)
	dbConfig.MaxConnLifetime = time.Hour
	dbConfig.MaxConnIdleTime = time.Minute * 30

	db, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	engine := factor.NewEngine(db, cfg.Workers, factor.Params{
		RegressionConstant: cfg.RegressionConstant,
		SaturationGames:    cfg.ConfidenceSaturationGames,
		MinGamesToReport:   cfg.MinGamesToReport,
		MinTeamGames:       cfg.MinTeamGames,
	}, cfg.ReportPath)

	s := &Server{
		db:     db,
		cfg:    cfg,
		router: mux.NewRouter(),
		engine: engine,
	}

	engine.StartRunCleanup()

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")
	s.router.HandleFunc("/refresh", s.refreshHandler).Methods("POST")
	s.router.HandleFunc("/refresh/{id}/status", s.refreshStatusHandler).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (s *Server) Start() error {
	handler := handlers.LoggingHandler(os.Stdout,
		handlers.RecoveryHandler()(s.router))

	s.httpServer = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting Park Factor Engine on port %s with %d workers",
		s.cfg.Port, s.cfg.Workers)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down Park Factor Engine...")

	s.db.Close()

	return s.httpServer.Shutdown(ctx)
}

// Handlers
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":   "healthy",
		"time":     time.Now().UTC(),
		"workers":  s.cfg.Workers,
		"database": "connected",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		health["database"] = "disconnected"
		health["status"] = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJSON(w, health)
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	runID, err := s.engine.StartRefresh()
	if err != nil {
		if errors.Is(err, factor.ErrRefreshInProgress) {
			http.Error(w, "A refresh is already in progress", http.StatusConflict)
			return
		}
		log.Printf("Failed to start refresh: %v", err)
		http.Error(w, "Failed to start refresh", http.StatusInternalServerError)
		return
	}

	go s.engine.RunRefresh(runID)

	response := RefreshResponse{
		RunID:     runID,
		Status:    "started",
		Message:   "Park factor refresh started",
		CreatedAt: time.Now().UTC(),
	}

	writeJSON(w, response)
}

func (s *Server) refreshStatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	runStatus, exists := s.engine.GetRunStatus(runID)
	if !exists {
		http.Error(w, "Refresh run not found", http.StatusNotFound)
		return
	}

	status := RefreshStatus{
		RunID:         runStatus.RunID,
		Status:        runStatus.Status,
		Stage:         runStatus.Stage,
		ParksTotal:    runStatus.ParksTotal,
		ParksComputed: runStatus.ParksComputed,
		CreatedAt:     runStatus.StartTime,
		CompletedAt:   runStatus.CompletedTime,
		Error:         runStatus.Error,
	}
	if runStatus.ParksTotal > 0 {
		status.Progress = float64(runStatus.ParksComputed) / float64(runStatus.ParksTotal)
	}

	writeJSON(w, status)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// runOnce executes a single refresh synchronously, for cron-driven use.
func runOnce(s *Server) error {
	runID, err := s.engine.StartRefresh()
	if err != nil {
		return err
	}

	return s.engine.Refresh(context.Background(), runID)
}

func main() {
	once := flag.Bool("once", false, "run a single refresh and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	if *once {
		if err := runOnce(server); err != nil {
			log.Fatal("Refresh failed:", err)
		}
		log.Println("Refresh complete")
		server.db.Close()
		return
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatal("Server shutdown failed:", err)
		}
		log.Println("Server shutdown complete")
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed to start:", err)
	}
}
