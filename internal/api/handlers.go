package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"onboarding-workers/internal/nlp"
)

type classifyRequest struct {
	Text string `json:"text"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type intentInfo struct {
	Intent      nlp.Intent `json:"intent"`
	Explanation string     `json:"explanation"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// Classify handles POST /api/nlp/classify.
func (s *Server) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result := s.deps.Observability.Classify(c.Request.Context(), "api", s.deps.Classifier, req.Text)

	c.JSON(http.StatusOK, result)
}

// Intents handles GET /api/nlp/intents.
func (s *Server) Intents(c *gin.Context) {
	intents := nlp.Intents()
	out := make([]intentInfo, 0, len(intents))
	for _, intent := range intents {
		out = append(out, intentInfo{Intent: intent, Explanation: s.deps.Classifier.Explain(intent)})
	}
	c.JSON(http.StatusOK, gin.H{"intents": out})
}

// ExplainIntent handles GET /api/nlp/intents/:intent/explain. Unknown
// labels get the UNKNOWN explanation.
func (s *Server) ExplainIntent(c *gin.Context) {
	label := c.Param("intent")
	c.JSON(http.StatusOK, intentInfo{
		Intent:      nlp.ParseIntent(label),
		Explanation: s.deps.Classifier.ExplainLabel(label),
	})
}

// Chat handles POST /api/chat.
func (s *Server) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reply, err := s.deps.Assistant.Respond(c.Request.Context(), req.Message)
	if err != nil {
		s.logger.Warn("chat request abandoned", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ServicesHealth handles GET /api/services/health.
func (s *Server) ServicesHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Services.CheckHealth(c.Request.Context()))
}

// upstreamError answers 502 when an onboarding service call failed and mock
// fallback was off.
func (s *Server) upstreamError(c *gin.Context, err error) {
	s.logger.Warn("onboarding service call failed", map[string]interface{}{
		"path":      c.FullPath(),
		"error":     err.Error(),
		"requestId": c.GetString("requestId"),
	})
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// Analytics handles GET /api/analytics.
func (s *Server) Analytics(c *gin.Context) {
	analytics, err := s.deps.Services.Analytics(c.Request.Context())
	if err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// Allocations handles GET /api/assets/allocations with an optional
// employeeId filter.
func (s *Server) Allocations(c *gin.Context) {
	employeeID := c.Query("employeeId")
	allocations, err := s.deps.Services.Allocations(c.Request.Context(), employeeID)
	if err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"employeeId":  employeeID,
		"allocations": allocations,
		"count":       len(allocations),
	})
}

func (s *Server) NotificationHistory(c *gin.Context) {
	history, err := s.deps.Services.NotificationHistory(c.Request.Context())
	if err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": history, "count": len(history)})
}

// OrchestrationStatus handles GET /api/orchestrate/status/:id.
func (s *Server) OrchestrationStatus(c *gin.Context) {
	status, err := s.deps.Services.OrchestrationStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"service": s.deps.ServiceName,
	})
}

// Ready runs every readiness check and answers 503 if any fails.
func (s *Server) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.deps.Readiness))
	for name := range s.deps.Readiness {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	status := http.StatusOK
	for _, name := range names {
		if err := s.deps.Readiness[name](ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	ready := "READY"
	if status != http.StatusOK {
		ready = "NOT_READY"
	}
	c.JSON(status, gin.H{"status": ready, "checks": checks})
}
