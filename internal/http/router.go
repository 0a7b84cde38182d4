package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	adminToken string,
	allowedOrigins []string,
	webhookH *WebhookHandler,
	chatH *ChatHandler,
	candidateH *CandidateHandler,
	jobH *JobHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(allowedOrigins))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "ThrivingCare API",
			"version": "1.0",
		})
	})

	r.POST("/webhooks/sms", webhookH.IncomingSMS)

	api := r.Group("/api")
	api.POST("/chat", chatH.PostMessage)
	api.POST("/candidates", candidateH.CreateCandidate)
	api.POST("/candidates/:id/resume", candidateH.UploadResume)
	api.GET("/jobs", jobH.ListJobs)
	api.GET("/jobs/count", jobH.CountJobs)
	api.GET("/jobs/:id/pay-package", jobH.PayPackage)
	api.POST("/jobs/:id/apply", candidateH.QuickApply)

	admin := r.Group("/admin", adminAuthMiddleware(adminToken))
	admin.GET("/jobs", adminH.ListJobs)
	admin.POST("/jobs", adminH.CreateJob)
	admin.PUT("/jobs/:id", adminH.UpdateJob)
	admin.DELETE("/jobs/:id", adminH.DeactivateJob)
	admin.GET("/candidates", adminH.ListCandidates)
	admin.GET("/candidates/:id", adminH.GetCandidate)
	admin.POST("/applications", adminH.CreateApplication)
	admin.PUT("/applications/:id/status", adminH.UpdateApplicationStatus)
	admin.GET("/analytics", adminH.Analytics)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// adminAuthMiddleware valida el secreto compartido del panel en comparacion
// de tiempo constante.
func adminAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-Admin-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// corsMiddleware permite los origenes del sitio de marketing.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Admin-Token")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
