package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/auth"
	"github.com/hongminglow/storefront-be/internal/cart"
	"github.com/hongminglow/storefront-be/internal/catalog"
	"github.com/hongminglow/storefront-be/internal/config"
	"github.com/hongminglow/storefront-be/internal/http/handlers"
	"github.com/hongminglow/storefront-be/internal/middleware"
	"github.com/hongminglow/storefront-be/internal/order"
	"github.com/hongminglow/storefront-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, log logrus.FieldLogger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, store, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Handler builds the routed handler with its middleware chain.
func Handler(cfg config.Config, store storage.Store, log logrus.FieldLogger) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.RefreshTokenSecret, cfg.JWTIssuer, cfg.JWTTTL, cfg.RefreshTTL)
	authn := auth.NewAuthenticator(tokens, store)

	catalogSvc := catalog.NewService(store)
	cartSvc := cart.NewService(store, catalogSvc, log, cfg.CartMaxAttempts)
	orderSvc := order.NewService(store, log, cfg.CartMaxAttempts)

	r := mux.NewRouter()
	handlers.NewHealthHandler(time.Now(), store, log).Register(r)
	handlers.NewAuthHandler(store, tokens, authn, log).Register(r)
	handlers.NewCatalogHandler(catalogSvc, log).Register(r)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.RequireAuth(authn, log))
	handlers.NewCartHandler(cartSvc, log).Register(protected)
	handlers.NewOrderHandler(orderSvc, log).Register(protected)

	// CORS wraps the router so preflight requests never reach route matching.
	return middleware.RequestID(middleware.Logging(log)(middleware.CORS(cfg.CORSOrigins)(r)))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
