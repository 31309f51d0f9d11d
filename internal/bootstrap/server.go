package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/officeseats/api"
	"github.com/Domenick1991/officeseats/api/middleware"
	seatbookingapi "github.com/Domenick1991/officeseats/internal/api/seatbooking_service_api"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the HTTP server and, when an address is configured, the gRPC server.
// It blocks until ctx is cancelled or a server fails.
func Run(ctx context.Context, app *App) error {
	s := newServers(app)
	cfg := app.Config

	errCh := make(chan error, 2)

	if s.grpcServer != nil {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
		}
		app.Logger.Info("gRPC server listening", zap.String("address", cfg.GRPC.Address))
		go func() { errCh <- s.grpcServer.Serve(lis) }()
	}

	app.Logger.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		app.Logger.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if s.grpcServer != nil {
			s.grpcServer.GracefulStop()
		}
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(app *App) *Servers {
	s := &Servers{
		httpServer: &http.Server{
			Addr:              app.Config.HTTP.Address,
			Handler:           NewRouter(app),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if app.Config.GRPC.Address != "" {
		s.grpcServer = grpc.NewServer()
		seatbookingapi.Register(s.grpcServer, seatbookingapi.NewServer(app.Ledger))
	}
	return s
}

// NewRouter builds the HTTP API. Callers are identified by the X-User-ID and
// X-User-Role headers set by the authenticating proxy in front of the service.
func NewRouter(app *App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(app.Logger), middleware.Identity())

	router.GET("/healthz", func(c *gin.Context) {
		if failed := app.Check(c.Request.Context()); len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if dir := app.Config.HTTP.SwaggerDir; dir != "" {
		router.StaticFile("/docs/openapi.json", filepath.Join(dir, "openapi.json"))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json"))))
	}

	userHandler := api.NewUserHandler(app.Users)
	userHandler.RegisterPublic(router.Group(""))
	api.NewScheduleHandler(app.Schedule, app.Location).Register(router.Group("/schedule"))
	api.NewSeatHandler(app.Seats, app.Ledger).Register(router.Group("/seats"))

	authed := router.Group("", middleware.RequireUser())
	api.NewBookingHandler(app.Ledger, app.Seats).Register(authed.Group("/bookings"))
	userHandler.RegisterMe(authed.Group("/me"))

	admin := router.Group("/admin", middleware.RequireUser(), middleware.RequireAdmin())
	userHandler.RegisterAdmin(admin.Group("/users"))
	api.NewAdminHandler(app.Seats, app.Ledger, app.Export, app.Location).Register(admin)

	return router
}
