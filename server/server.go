package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
	simulatorx "github.com/rudra2807/AgentCoach-AI/roleplay/simulator"
)

// Server is the HTTP surface over one simulator. Requests carry only the
// session id and the trainee's message; everything else lives in the
// session store.
type Server struct {
	sim *simulatorx.Simulator
}

func New(sim *simulatorx.Simulator) (*Server, error) {
	if sim == nil {
		return nil, errors.New("simulator is required")
	}
	return &Server{sim: sim}, nil
}

func (s *Server) Routes() http.Handler {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	engine.GET("/healthz", s.handleHealthz)
	engine.POST("/api/roleplay/start", s.handleStart)
	engine.POST("/api/roleplay/respond", s.handleRespond)
	engine.POST("/api/roleplay/report", s.handleReport)
	engine.DELETE("/api/roleplay/sessions/:id", s.handleEndSession)
	return engine
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStart(c *gin.Context) {
	sess, opening, err := s.sim.StartSession(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.SessionID,
		"script_id":  sess.ScriptID,
		"stage_id":   sess.StageID,
		"message":    opening,
	})
}

type respondRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleRespond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	out, err := s.sim.HandleTurn(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": out.SessionID,
		"stage_id":   out.StageID,
		"done":       out.Done,
		"message":    out.Reply,
		"verdict":    out.Verdict,
		"analysis":   out.Analysis,
	})
}

type reportRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}

	report, err := s.sim.SessionReport(c.Request.Context(), req.SessionID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleEndSession(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}

	if err := s.sim.EndSession(c.Request.Context(), sessionID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sessionx.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, simulatorx.ErrInvalidMessage),
		errors.Is(err, simulatorx.ErrInvalidSession),
		errors.Is(err, contractx.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, contractx.ErrModelInvoke),
		errors.Is(err, contractx.ErrSchemaViolation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
