package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kisancoop/dairyops/docs"
	"github.com/kisancoop/dairyops/internal/app/api/handlers"
	mw "github.com/kisancoop/dairyops/internal/app/api/middleware"
	"github.com/kisancoop/dairyops/internal/app/service/identity"
	"github.com/kisancoop/dairyops/internal/app/service/inventory"
	"github.com/kisancoop/dairyops/internal/app/service/menu"
	"github.com/kisancoop/dairyops/internal/app/service/payment"
	"github.com/kisancoop/dairyops/internal/app/service/statistics"
	cfgpkg "github.com/kisancoop/dairyops/pkg/config"
	metrics "github.com/kisancoop/dairyops/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	ident *identity.Service,
	payments payment.Manager,
	stats *statistics.Service,
	menus menu.Manager,
	inv inventory.Manager,
) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The gateway webhook carries its own credentials in the
	// Authorization header; the service validates them itself.
	webhook := r.Group("/api")
	webhook.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	// Service-to-service calls authenticate with the shared API key.
	internalAPI := r.Group("/api")
	internalAPI.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.APIKeyAuthMiddleware(cfg))

	// Everything else requires a bearer token.
	api := r.Group("/api")
	api.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.JWTAuthMiddleware(cfg, ident))

	handlers.RegisterPaymentRoutes(api, webhook, internalAPI, payments)
	handlers.RegisterTransactionRoutes(api, payments, stats)
	handlers.RegisterMenuRoutes(api, menus)
	handlers.RegisterInventoryRoutes(api, inv)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
