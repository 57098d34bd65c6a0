package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"twitchchat/internal/app/adapters/http/handlers"
	"twitchchat/internal/app/adapters/http/middlewares"
	"twitchchat/internal/app/domain/chatlog"
	"twitchchat/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Addr string
	// AuthToken enables basic auth (user "admin"). Without it only loopback
	// clients are served.
	AuthToken string
}

type Router struct {
	router      *gin.Engine
	handlers    *handlers.Handlers
	middlewares *middlewares.Middlewares

	log  logger.Logger
	opts Options
}

// NewRouter serves the status endpoints. overlay, when set, is mounted on /ws
// behind the same guard.
func NewRouter(log logger.Logger, opts Options, chat *chatlog.Log, overlay http.Handler, started time.Time) *Router {
	r := &Router{
		router:      gin.New(),
		handlers:    handlers.New(log, chat, started),
		middlewares: middlewares.New(),
		log:         log,
		opts:        opts,
	}
	r.router.Use(gin.Recovery())

	guard := r.middlewares.LocalOnly()
	if opts.AuthToken != "" {
		guard = gin.BasicAuth(gin.Accounts{
			"admin": opts.AuthToken,
		})
	}

	protected := r.router.Group("/", guard)
	pprof.RouteRegister(protected)

	protected.GET("/metrics", gin.WrapH(promhttp.Handler()))
	protected.GET("/chatlog", r.handlers.ChatLogHandler)
	protected.GET("/status", r.handlers.StatusHandler)
	if overlay != nil {
		protected.GET("/ws", gin.WrapH(overlay))
	}
	return r
}

func (r *Router) Handler() http.Handler {
	return r.router
}

// Run serves until ctx ends, then shuts down gracefully.
func (r *Router) Run(ctx context.Context) error {
	srv := r.newServer(r.opts.Addr, r.router)

	errCh := make(chan error, 1)
	go func() {
		r.log.Info("HTTP server started", slog.String("addr", r.opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		r.log.Error("HTTP server shutdown failed", err)
		return err
	}
	return nil
}

func (r *Router) newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}
