package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/devflow-qa/apiserver/config"
	"github.com/devflow-qa/apiserver/internal/db"
	"github.com/devflow-qa/apiserver/internal/handlers"
	"github.com/devflow-qa/apiserver/internal/mq"
	"github.com/devflow-qa/apiserver/internal/services"
	"github.com/devflow-qa/apiserver/internal/storage"
	"github.com/devflow-qa/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	avatars, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	questionRepo := store.NewQuestionRepository(dbConn)
	answerRepo := store.NewAnswerRepository(dbConn)
	tagRepo := store.NewTagRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)

	events := services.NewEventPublisher(bus)
	questionService := services.NewQuestionService(questionRepo, events)
	answerService := services.NewAnswerService(answerRepo, events)
	tagService := services.NewTagService(tagRepo)
	userService := services.NewUserService(userRepo, questionRepo, answerRepo, avatars, cfg.Badges)

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/questions", func(r chi.Router) {
		handlers.QuestionRouter(r, questionService, answerService, authMiddleware)
	})
	router.Route("/answers", func(r chi.Router) {
		handlers.AnswerRouter(r, answerService, authMiddleware)
	})
	router.Route("/tags", func(r chi.Router) {
		handlers.TagRouter(r, tagService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService)
	})
	router.Route("/me", func(r chi.Router) {
		handlers.MeRouter(r, userService, authMiddleware)
	})
	router.Route("/avatars", func(r chi.Router) {
		handlers.AvatarRouter(r, userService)
	})
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	router.Route("/webhooks", func(r chi.Router) {
		handlers.WebhookRouter(r, userService, cfg.WebhookSecret)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.bus != nil {
		_ = s.bus.Close()
	}
	return s.httpServer.Close()
}
