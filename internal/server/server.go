package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gamelog/apiserver/config"
	"github.com/gamelog/apiserver/internal/auth"
	"github.com/gamelog/apiserver/internal/db"
	"github.com/gamelog/apiserver/internal/handlers"
	"github.com/gamelog/apiserver/internal/mq"
	"github.com/gamelog/apiserver/internal/services"
	"github.com/gamelog/apiserver/internal/storage"
	"github.com/gamelog/apiserver/internal/store"
	"github.com/gamelog/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.MQ
}

// New constructs a Server with all dependencies wired. A missing or empty
// signing secret is a startup failure, never a per-request one.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth config: %w", err)
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objectStorage, err := newStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	events, err := newEvents(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	accountRepo := store.NewAccountRepository(dbConn)
	gameRepo := store.NewGameRepository(dbConn)
	reviewRepo := store.NewReviewRepository(dbConn)
	libraryRepo := store.NewLibraryRepository(dbConn)
	listRepo := store.NewListRepository(dbConn)

	accountService := services.NewAccountService(accountRepo, events)
	gameService := services.NewGameService(gameRepo, objectStorage)
	reviewService := services.NewReviewService(reviewRepo, events)
	libraryService := services.NewLibraryService(libraryRepo)
	listService := services.NewListService(listRepo)

	authenticator := auth.NewAuthenticator(codec, accountRepo)
	policy := auth.NewPolicy(accessRules())

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		authenticator.Middleware,
		policy.Middleware,
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, accountService, codec)
	})
	router.Route("/accounts", func(r chi.Router) {
		handlers.AccountRouter(r, accountService)
	})
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminAccountRouter(r, accountService)
	})
	router.Route("/games", func(r chi.Router) {
		handlers.GameRouter(r, gameService)
	})
	router.Route("/reviews", func(r chi.Router) {
		handlers.ReviewRouter(r, reviewService)
	})
	router.Route("/library", func(r chi.Router) {
		handlers.LibraryRouter(r, libraryService)
	})
	router.Route("/lists", func(r chi.Router) {
		handlers.ListRouter(r, listService)
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
		events:     events,
	}, nil
}

// accessRules is the ordered route access table, evaluated top to bottom
// with first-match-wins semantics. Routes matching no rule require
// authentication.
func accessRules() []auth.AccessRule {
	return []auth.AccessRule{
		auth.Public("POST", "/auth/login"),
		auth.Public("POST", "/accounts"),
		auth.Public("GET", "/healthz"),
		auth.Public("GET", "/games/**"),
		auth.Public("GET", "/reviews/**"),
		auth.Public("GET", "/lists/**"),
		auth.RequireRole("*", "/admin/**", types.RoleAdministrator),
		auth.RequireRole("POST", "/games/**", types.RoleAdministrator),
		auth.RequireRole("PUT", "/games/**", types.RoleAdministrator),
		auth.RequireRole("DELETE", "/games/**", types.RoleAdministrator),
	}
}

func newStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.StorageBackend {
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newEvents(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQBackend {
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQBackend)
	}
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
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
