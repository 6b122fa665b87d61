package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mailsweep/internal/api"
	"mailsweep/internal/mq"
	"mailsweep/pkg/ratelimit"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *api.AuthHandler,
	scanHandler *api.ScanHandler,
	emailHandler *api.EmailHandler,
	ruleHandler *api.RuleHandler,
	limiter *ratelimit.Limiter,
	jwtSecret string,
	db *pgxpool.Pool,
	producer *mq.Producer,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if !producer.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	auth.Use(RateLimitMiddleware(limiter))
	{
		auth.GET("/gmail/connect", authHandler.GmailAuthURL)
		auth.POST("/gmail/callback", authHandler.GmailCallback)

		auth.POST("/scan", scanHandler.RequestScan)

		auth.GET("/emails", emailHandler.GetEmails)
		auth.GET("/emails/stats", emailHandler.GetStats)
		auth.POST("/emails/delete", emailHandler.BulkDelete)
		auth.POST("/emails/:message_id/unsubscribe", emailHandler.Unsubscribe)

		auth.POST("/rules", ruleHandler.CreateRule)
		auth.GET("/rules", ruleHandler.GetRules)
		auth.POST("/rules/:id/active", ruleHandler.SetRuleActive)
		auth.DELETE("/rules/:id", ruleHandler.DeleteRule)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
