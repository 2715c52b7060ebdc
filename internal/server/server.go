package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/orderdesk/internal/auth"
	authdomain "github.com/smallbiznis/orderdesk/internal/auth/domain"
	"github.com/smallbiznis/orderdesk/internal/auth/session"
	"github.com/smallbiznis/orderdesk/internal/catalog"
	catalogdomain "github.com/smallbiznis/orderdesk/internal/catalog/domain"
	"github.com/smallbiznis/orderdesk/internal/config"
	"github.com/smallbiznis/orderdesk/internal/customer"
	customerdomain "github.com/smallbiznis/orderdesk/internal/customer/domain"
	"github.com/smallbiznis/orderdesk/internal/history"
	historydomain "github.com/smallbiznis/orderdesk/internal/history/domain"
	"github.com/smallbiznis/orderdesk/internal/ledger"
	obsmetrics "github.com/smallbiznis/orderdesk/internal/observability/metrics"
	"github.com/smallbiznis/orderdesk/internal/order"
	orderdomain "github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/principal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	customer.Module,
	catalog.Module,
	ledger.Module,
	history.Module,
	order.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(obsmetrics.HTTP().Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	sessions    *session.Manager
	authSvc     authdomain.Service
	customerSvc customerdomain.Service
	catalogSvc  catalogdomain.Service
	orderSvc    orderdomain.Service
	historySvc  historydomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	Sessions    *session.Manager
	AuthSvc     authdomain.Service
	CustomerSvc customerdomain.Service
	CatalogSvc  catalogdomain.Service
	OrderSvc    orderdomain.Service
	HistorySvc  historydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		sessions:    p.Sessions,
		authSvc:     p.AuthSvc,
		customerSvc: p.CustomerSvc,
		catalogSvc:  p.CatalogSvc,
		orderSvc:    p.OrderSvc,
		historySvc:  p.HistorySvc,
	}

	svc.registerAuthRoutes()
	svc.registerCustomerRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerCustomerRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.GET("/customer/products", s.GetDraftView)
	api.GET("/customer/order-history", s.GetOwnHistory)

	api.POST("/orders/update", s.UpdateOrder)
	api.POST("/orders/update-all", s.UpdateOrders)
	api.POST("/orders/submit-all", s.SubmitOrders)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AuthRequired(), s.RequireRole(principal.RoleAdmin))

	// -------- Customers --------
	admin.GET("/customers", s.ListCustomers)
	admin.POST("/customers", s.CreateCustomer)
	admin.GET("/customers/:id", s.GetCustomerByID)
	admin.PUT("/customers/:id", s.UpdateCustomer)
	admin.DELETE("/customers/:id", s.DeleteCustomer)

	// -------- Master products --------
	admin.GET("/products", s.ListMasterProducts)
	admin.POST("/products", s.CreateMasterProduct)
	admin.GET("/products/:id", s.GetMasterProductByID)
	admin.PUT("/products/:id", s.UpdateMasterProduct)
	admin.DELETE("/products/:id", s.DeleteMasterProduct)

	// -------- Assigned products --------
	admin.POST("/assign-products", s.AssignProducts)
	admin.GET("/customers/:id/products", s.ListCustomerProducts)
	admin.PUT("/customers/:id/products/:productId", s.UpdateCustomerProduct)
	admin.DELETE("/customers/:id/products/:productId", s.RemoveCustomerProduct)

	// -------- Order lifecycle --------
	admin.GET("/order-history/:customerId", s.GetCustomerPastHistory)
	admin.POST("/archive-order/:customerId/:submittedAt", s.ArchiveOrder)

	admin.GET("/statistics", s.GetStatistics)
}
