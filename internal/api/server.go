// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"billmate/internal/auth"
	"billmate/internal/models"
	"billmate/internal/service"
)

// Service interfaces for dependency injection and testing.

// AuthServiceInterface defines the interface for account operations.
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, displayName, password string) (*service.Session, error)
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, name, avatarURL string) (*models.User, error)
}

// BillServiceInterface defines the interface for bill operations.
type BillServiceInterface interface {
	List(ctx context.Context, userID string) ([]*service.BillView, error)
	Get(ctx context.Context, userID, billID string) (*service.BillView, error)
	Create(ctx context.Context, userID string, input service.BillInput) (*models.Bill, error)
	Update(ctx context.Context, userID, billID string, input service.BillInput) (*models.Bill, error)
	SetPaid(ctx context.Context, userID, billID string, paid bool) (*models.Bill, error)
	Delete(ctx context.Context, userID, billID string) error
	Comment(ctx context.Context, userID, billID, text string) (*models.BillActivity, error)
	Activities(ctx context.Context, userID, billID string) ([]*models.BillActivity, error)
	GetSplit(ctx context.Context, userID, billID string) (*models.BillSplit, error)
	SetSplit(ctx context.Context, userID, billID string, user1Pct, user2Pct decimal.Decimal) (*models.BillSplit, error)
}

// ConnectionServiceInterface defines the interface for pairing operations.
type ConnectionServiceInterface interface {
	GenerateCode(ctx context.Context, userID string) (*models.ConnectionCode, error)
	Redeem(ctx context.Context, code, userID string) (*models.SharedConnection, error)
	Accept(ctx context.Context, connectionID, userID string) (*models.SharedConnection, error)
	Disconnect(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*service.ConnectionView, error)
}

// PreferenceServiceInterface defines the interface for notification settings.
type PreferenceServiceInterface interface {
	Get(ctx context.Context, userID string) (*models.NotificationPreference, error)
	Update(ctx context.Context, userID string, daysBeforeDue []int, notifyOnPaid, notifyOnOverdue bool) (*models.NotificationPreference, error)
}

// Server represents the HTTP API server.
type Server struct {
	router      *mux.Router
	httpServer  *http.Server
	jwtManager  *auth.JWTManager
	auth        AuthServiceInterface
	bills       BillServiceInterface
	connections ConnectionServiceInterface
	preferences PreferenceServiceInterface
	config      *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	jwtManager *auth.JWTManager,
	authService AuthServiceInterface,
	billService BillServiceInterface,
	connectionService ConnectionServiceInterface,
	preferenceService PreferenceServiceInterface,
) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		jwtManager:  jwtManager,
		auth:        authService,
		bills:       billService,
		connections: connectionService,
		preferences: preferenceService,
		config:      config,
	}

	s.setupRouter()

	return s
}

func (s *Server) setupRouter() {
	s.router.Use(recoveryMiddleware)
	s.router.Use(loggingMiddleware)
	s.router.Use(metricsMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", metricsHandler()).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Auth endpoints (no token required)
	api.HandleFunc("/auth/signup", s.handleSignUp).Methods("POST")
	api.HandleFunc("/auth/signin", s.handleSignIn).Methods("POST")

	authed := api.NewRoute().Subrouter()
	authed.Use(requireAuth(s.jwtManager))

	// Profile endpoints
	authed.HandleFunc("/me", s.handleGetProfile).Methods("GET")
	authed.HandleFunc("/me", s.handleUpdateProfile).Methods("PUT")

	// Bill endpoints
	authed.HandleFunc("/bills", s.handleListBills).Methods("GET")
	authed.HandleFunc("/bills", s.handleCreateBill).Methods("POST")
	authed.HandleFunc("/bills/{id}", s.handleGetBill).Methods("GET")
	authed.HandleFunc("/bills/{id}", s.handleUpdateBill).Methods("PUT")
	authed.HandleFunc("/bills/{id}", s.handleDeleteBill).Methods("DELETE")
	authed.HandleFunc("/bills/{id}/paid", s.handleSetPaid).Methods("PUT")
	authed.HandleFunc("/bills/{id}/activities", s.handleListActivities).Methods("GET")
	authed.HandleFunc("/bills/{id}/comments", s.handleComment).Methods("POST")
	authed.HandleFunc("/bills/{id}/split", s.handleGetSplit).Methods("GET")
	authed.HandleFunc("/bills/{id}/split", s.handleSetSplit).Methods("PUT")

	// Pairing endpoints
	authed.HandleFunc("/connection", s.handleGetConnection).Methods("GET")
	authed.HandleFunc("/connection", s.handleDisconnect).Methods("DELETE")
	authed.HandleFunc("/connection/code", s.handleGenerateCode).Methods("POST")
	authed.HandleFunc("/connection/redeem", s.handleRedeemCode).Methods("POST")
	authed.HandleFunc("/connection/accept", s.handleAcceptConnection).Methods("POST")

	// Notification preferences
	authed.HandleFunc("/preferences", s.handleGetPreferences).Methods("GET")
	authed.HandleFunc("/preferences", s.handleUpdatePreferences).Methods("PUT")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "billmate",
	})
}

// Handler returns the root handler, for wrapping and for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server with the given root handler. Passing nil
// serves the router directly.
func (s *Server) Start(handler http.Handler) error {
	if handler != nil {
		s.httpServer.Handler = handler
	}
	slog.Info("API server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}
