// Package api serves the classifier and assistant over HTTP for the chat
// dashboard.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onboarding-workers/internal/assistant"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/internal/common/onboarding"
	"onboarding-workers/internal/nlp"
)

// Classifier is the part of nlp.Classifier the API exposes.
type Classifier interface {
	Classify(text string) *nlp.Result
	Explain(intent nlp.Intent) string
	ExplainLabel(label string) string
}

type Responder interface {
	Respond(ctx context.Context, text string) (*assistant.Reply, error)
}

// OnboardingServices is the read side of the onboarding services the
// dashboard queries directly.
type OnboardingServices interface {
	CheckHealth(ctx context.Context) *onboarding.HealthReport
	Allocations(ctx context.Context, employeeID string) ([]onboarding.Allocation, error)
	NotificationHistory(ctx context.Context) ([]onboarding.Notification, error)
	OrchestrationStatus(ctx context.Context, orchestrationID string) (*onboarding.OrchestrationStatus, error)
	Analytics(ctx context.Context) (*onboarding.Analytics, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Dependencies struct {
	Classifier     Classifier
	Assistant      Responder
	Services       OnboardingServices
	Observability  *observability.Observability // nil disables classification spans
	Readiness      map[string]ReadinessCheck
	ServiceName    string
	AllowedOrigins []string
	Logger         logger.Logger
}

type Server struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	s := &Server{
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), s.accessLog())
	router.Use(corsMiddleware(deps.AllowedOrigins))

	router.GET("/health", s.Health)
	router.GET("/ready", s.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	{
		nlpGroup := apiGroup.Group("/nlp")
		nlpGroup.POST("/classify", s.Classify)
		nlpGroup.GET("/intents", s.Intents)
		nlpGroup.GET("/intents/:intent/explain", s.ExplainIntent)

		apiGroup.POST("/chat", s.Chat)
		apiGroup.GET("/services/health", s.ServicesHealth)
		apiGroup.GET("/analytics", s.Analytics)
		apiGroup.GET("/assets/allocations", s.Allocations)
		apiGroup.GET("/notifications/history", s.NotificationHistory)
		apiGroup.GET("/orchestrate/status/:id", s.OrchestrationStatus)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/metrics" {
			return
		}
		s.logger.Debug("request handled", map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"requestId": c.GetString("requestId"),
		})
	}
}
