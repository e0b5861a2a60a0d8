package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/dashboard/internal/action"
	"github.com/smallbiznis/dashboard/internal/assets"
	auditdomain "github.com/smallbiznis/dashboard/internal/audit/domain"
	"github.com/smallbiznis/dashboard/internal/auth"
	"github.com/smallbiznis/dashboard/internal/auth/session"
	"github.com/smallbiznis/dashboard/internal/authorization"
	"github.com/smallbiznis/dashboard/internal/config"
	customerdomain "github.com/smallbiznis/dashboard/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/dashboard/internal/invoice/domain"
	"github.com/smallbiznis/dashboard/internal/observability"
	obsmiddleware "github.com/smallbiznis/dashboard/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/dashboard/internal/observability/metrics"
	obstracing "github.com/smallbiznis/dashboard/internal/observability/tracing"
	"github.com/smallbiznis/dashboard/internal/providers/pdf"
	"github.com/smallbiznis/dashboard/internal/providers/spreadsheet"
	"github.com/smallbiznis/dashboard/internal/ratelimit"
	"github.com/smallbiznis/dashboard/internal/scheduler"
	"github.com/smallbiznis/dashboard/internal/viewcache"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(func(b *auth.Bridge) IdentityBridge { return b }),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	bridge      IdentityBridge
	sessions    *session.Manager
	actions     *action.Orchestrator
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
	views       viewcache.Cache
	authzSvc    authorization.Service
	uploads     *config.UploadPolicyHolder
	pdf         pdf.Provider
	sheets      spreadsheet.Provider
	scheduler   *scheduler.Scheduler
	auditSvc    auditdomain.Service
	signInLimit *ratelimit.SignInLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Bridge       IdentityBridge
	Sessions     *session.Manager
	Orchestrator *action.Orchestrator
	CustomerSvc  customerdomain.Service
	InvoiceSvc   invoicedomain.Service
	Views        viewcache.Cache
	AuthzSvc     authorization.Service
	Uploads      *config.UploadPolicyHolder
	PDF          pdf.Provider
	Sheets       spreadsheet.Provider
	Scheduler    *scheduler.Scheduler
	AuditSvc     auditdomain.Service
	SignInLimit  *ratelimit.SignInLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		bridge:      p.Bridge,
		sessions:    p.Sessions,
		actions:     p.Orchestrator,
		customerSvc: p.CustomerSvc,
		invoiceSvc:  p.InvoiceSvc,
		views:       p.Views,
		authzSvc:    p.AuthzSvc,
		uploads:     p.Uploads,
		pdf:         p.PDF,
		sheets:      p.Sheets,
		scheduler:   p.Scheduler,
		auditSvc:    p.AuditSvc,
		signInLimit: p.SignInLimit,
	}

	svc.registerAuthRoutes()
	svc.registerDashboardRoutes()
	svc.registerAssetRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/session", s.Me)
	auth.GET("/providers", s.AuthProviders)

	s.engine.POST("/logout", s.Logout)
	s.engine.GET("/login/:name", s.OAuthLogin)
}

func (s *Server) registerDashboardRoutes() {
	dashboard := s.engine.Group("/dashboard")
	dashboard.Use(s.WebAuthRequired())

	// -------- Customers --------
	customers := dashboard.Group("/customers")
	customers.GET("", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.ListCustomers)
	customers.GET("/export", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.ExportCustomers)
	customers.POST("", s.authorize(authorization.ObjectCustomer, authorization.ActionCreate), s.CreateCustomer)
	customers.GET("/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.GetCustomerByID)
	customers.POST("/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionUpdate), s.UpdateCustomer)
	customers.PUT("/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionUpdate), s.UpdateCustomer)
	customers.DELETE("/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionDelete), s.DeleteCustomer)

	// -------- Invoices --------
	invoices := dashboard.Group("/invoices")
	invoices.GET("", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
	invoices.GET("/export", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.ExportInvoices)
	invoices.POST("", s.authorize(authorization.ObjectInvoice, authorization.ActionCreate), s.CreateInvoice)
	invoices.GET("/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceByID)
	invoices.GET("/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.RenderInvoicePDF)
	invoices.POST("/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionUpdate), s.UpdateInvoice)
	invoices.PUT("/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionUpdate), s.UpdateInvoice)
	invoices.DELETE("/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionDelete), s.DeleteInvoice)

	// -------- Maintenance --------
	dashboard.POST("/maintenance/sweep-assets", s.authorize(authorization.ObjectMaintenance, authorization.ActionSweep), s.SweepAssets)

	// -------- Audit --------
	dashboard.GET("/audit-logs", s.authorize(authorization.ObjectAudit, authorization.ActionView), s.ListAuditLogs)
}

// registerAssetRoutes serves uploaded customer images when they live on the
// local filesystem and are addressed by path.
func (s *Server) registerAssetRoutes() {
	if s.cfg.Assets.Driver != config.AssetDriverLocal || s.cfg.Assets.PublicPrefix != "" {
		return
	}
	prefix := "/" + filepath.ToSlash(filepath.Clean(assets.CustomerPrefix))
	s.engine.Static(prefix, filepath.Join(s.cfg.Assets.Dir, assets.CustomerPrefix))
}

func (s *Server) registerFallback() {
	publicDir := s.cfg.Assets.Dir
	s.engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && publicDir != "" && fileExists(publicDir, c.Request.URL.Path) {
			c.File(filepath.Join(publicDir, filepath.Clean(c.Request.URL.Path)))
			return
		}
		AbortWithError(c, ErrNotFound)
	})
}

func fileExists(publicDir, reqPath string) bool {
	clean := filepath.Clean(reqPath)

	// prevent path traversal
	if clean == "." || clean == "/" || clean == ".." {
		return false
	}

	fullPath := filepath.Join(publicDir, clean)

	info, err := os.Stat(fullPath)
	if err != nil {
		return false
	}

	return !info.IsDir()
}
