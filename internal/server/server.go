package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
	"github.com/greensupply/greensupply/internal/config"
	dashboarddomain "github.com/greensupply/greensupply/internal/dashboard/domain"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	obsmetrics "github.com/greensupply/greensupply/internal/observability/metrics"
	orderdomain "github.com/greensupply/greensupply/internal/order/domain"
	"github.com/greensupply/greensupply/internal/providers/identity"
	recommenddomain "github.com/greensupply/greensupply/internal/recommend/domain"
	regiondomain "github.com/greensupply/greensupply/internal/region/domain"
	supplierdomain "github.com/greensupply/greensupply/internal/supplier/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	identity     identity.Provider
	businessSvc  businessdomain.Service
	supplierSvc  supplierdomain.Service
	groupSvc     groupdomain.Service
	orderSvc     orderdomain.Service
	dashboardSvc dashboarddomain.Service
	recommendSvc recommenddomain.Service
	catalogRepo  catalogdomain.Repository
	regionRepo   regiondomain.Repository
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	Identity     identity.Provider
	BusinessSvc  businessdomain.Service
	SupplierSvc  supplierdomain.Service
	GroupSvc     groupdomain.Service
	OrderSvc     orderdomain.Service
	DashboardSvc dashboarddomain.Service
	RecommendSvc recommenddomain.Service
	CatalogRepo  catalogdomain.Repository
	RegionRepo   regiondomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("http.server"),
		identity:     p.Identity,
		businessSvc:  p.BusinessSvc,
		supplierSvc:  p.SupplierSvc,
		groupSvc:     p.GroupSvc,
		orderSvc:     p.OrderSvc,
		dashboardSvc: p.DashboardSvc,
		recommendSvc: p.RecommendSvc,
		catalogRepo:  p.CatalogRepo,
		regionRepo:   p.RegionRepo,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	r := s.engine

	r.GET("/health", s.Health)
	r.GET("/health/db", s.HealthDB)

	r.GET("/auth/me", s.Me)

	r.POST("/businesses", s.CreateBusiness)
	r.GET("/businesses/:id", s.GetBusinessByID)

	r.GET("/products", s.ListProducts)
	r.GET("/regions", s.ListRegions)

	r.POST("/groups", s.CreateGroup)
	r.GET("/groups", s.ListGroups)
	r.GET("/groups/:id", s.GetGroupByID)
	r.POST("/groups/:id/join", s.JoinGroup)
	r.POST("/groups/:id/approve", s.ApproveGroup)
	r.GET("/groups/:id/impact", s.GroupImpact)

	r.POST("/supplier-products", s.CreateSupplierProduct)
	r.GET("/supplier-products", s.ListSupplierProducts)

	r.GET("/supplier-orders", s.ListSupplierOrders)
	r.GET("/business-orders", s.ListBusinessOrders)

	r.GET("/dashboard/business-summary", s.BusinessSummary)

	r.POST("/recommend", s.RecommendGroup)
	r.POST("/recommend/dashboard", s.RecommendDashboard)
	r.GET("/recommend/group-opportunities", s.RecommendGroupOpportunities)
}
