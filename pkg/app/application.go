package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"taskhire/internal/health"
	"taskhire/pkg/config"
	"taskhire/pkg/contracts"
	httputil "taskhire/pkg/http"
	"taskhire/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

type Application struct {
	cfg              *config.Config
	rs               *httputil.Responder
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.ActorRateLimiter
	healthHandler    http.Handler
	appHTTPHandler   http.Handler
	hooks            []shutdownHook
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{
		cfg: cfg,
		rs:  httputil.NewResponder(cfg.Log, cfg.IsProduction()),
	}
}

// Responder is the error boundary shared by the middleware stack and handlers.
func (a *Application) Responder() *httputil.Responder {
	return a.rs
}

// SetApp mounts handlers behind the authenticated middleware stack and the
// health probes behind logging and recovery only.
func (a *Application) SetApp(verifier middleware.TokenVerifier, handlers ...contracts.Handler) {
	a.setHealthHandler(health.NewHandler(a.cfg.Client.Mongo, a.cfg.Log))
	a.setAppHandler(verifier, handlers)
	a.setAppServer()
}

// OnShutdown registers fn to run after the HTTP server stops, in
// registration order.
func (a *Application) OnShutdown(name string, fn func(ctx context.Context) error) {
	a.hooks = append(a.hooks, shutdownHook{name: name, fn: fn})
}

// Handler returns the root handler; Run serves it.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler(h contracts.Handler) {
	healthRouter := httprouter.New()
	h.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.Recovery(a.rs)(healthHTTPHandler)
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(verifier middleware.TokenVerifier, handlers []contracts.Handler) {
	appRouter := httprouter.New()
	appRouter.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.rs.Error(w, r, errRouteNotFound(r))
	})
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewActorRateLimiter(a.cfg.RateLimitRequests, a.cfg.RateLimitWindow)

	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.Idempotency(a.idempotencyStore)(appHTTPHandler)
	appHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout, a.rs)(appHTTPHandler)
	appHTTPHandler = middleware.RateLimit(a.rateLimiter, a.rs)(appHTTPHandler)
	appHTTPHandler = middleware.Authenticate(verifier, a.rs)(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(a.rs)(appHTTPHandler)
	appHTTPHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(a.rs)(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(a.cfg.Log)(appHTTPHandler)
	a.appHTTPHandler = appHTTPHandler
	a.cfg.Log.Info("Application endpoints configured with full security middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.runHooks(ctx)
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}

func (a *Application) runHooks(ctx context.Context) {
	for _, h := range a.hooks {
		if err := h.fn(ctx); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "hook", h.name, "error", err)
			continue
		}
		a.cfg.Log.Info("Shutdown hook completed", "hook", h.name)
	}
}
