package server

import (
	"context"
	"net/http"

	"fitpass/internal/audit"
	"fitpass/internal/auth"
	"fitpass/internal/config"
	"fitpass/internal/gym"
	"fitpass/internal/notification"
	"fitpass/internal/plan"
	"fitpass/internal/settlement"
	"fitpass/internal/subscription"
	"fitpass/internal/user"

	"github.com/gin-gonic/gin"
)

// Handlers carries the per-domain HTTP handlers the router mounts.
type Handlers struct {
	User         *user.Handler
	Gym          *gym.Handler
	Plan         *plan.Handler
	Subscription *subscription.Handler
	Settlement   *settlement.Handler
	Notification *notification.Handler
	Audit        *audit.Handler
}

type Server struct {
	router *gin.Engine
	config *config.Config
	http   *http.Server
}

func New(cfg *config.Config, h Handlers) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.RefreshToken)
	}

	// Gateway callbacks authenticate by HMAC over the raw body, not by JWT.
	router.POST("/webhooks/payment", h.Subscription.Webhook)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.User.GetMe)
		protected.PATCH("/me", h.User.UpdateMe)
		protected.GET("/gyms", h.Gym.ListGyms)
		protected.GET("/gyms/:id", h.Gym.GetGym)
		protected.GET("/gyms/:id/plans", h.Plan.ListByGym)
		protected.POST("/subscriptions", h.Subscription.Create)
		protected.GET("/subscriptions", h.Subscription.ListMy)
		protected.POST("/payments/verify", h.Subscription.Verify)
		protected.GET("/notifications", h.Notification.ListMy)
	}

	staff := router.Group("/console")
	staff.Use(authMiddleware, auth.RequireRole(auth.RoleOwner, auth.RoleAdmin))
	{
		staff.POST("/plans", h.Plan.CreatePlan)
		staff.PATCH("/plans/:id", h.Plan.UpdatePlan)
		staff.POST("/subscriptions", h.Subscription.CreateConsole)
		staff.GET("/subscriptions/:id", h.Subscription.GetByID)
		staff.POST("/subscriptions/:id/activate", h.Subscription.ManualActivate)
		staff.GET("/gyms/:id/audit", h.Audit.ListByGym)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/gyms", h.Gym.CreateGym)
		admin.GET("/settlements/unsettled", h.Settlement.UnsettledSummary)
		admin.POST("/settlements", h.Settlement.Create)
		admin.GET("/settlements", h.Settlement.List)
		admin.GET("/settlements/:id", h.Settlement.GetByID)
		admin.POST("/settlements/:id/process", h.Settlement.Process)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
