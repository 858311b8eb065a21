// Package server provides the HTTP API driving the interview core.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/practicelabs/interview-partner/internal/ai"
	"github.com/practicelabs/interview-partner/internal/interview"
	"github.com/practicelabs/interview-partner/internal/report"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server exposes the interview orchestrator and report aggregator over HTTP.
type Server struct {
	echo       *echo.Echo
	agent      *interview.Agent
	store      interview.Store
	aggregator *report.Aggregator
	logger     *zap.Logger
}

// New creates the HTTP server and registers its routes.
func New(agent *interview.Agent, store interview.Store, aggregator *report.Aggregator, logger *zap.Logger) (*Server, error) {
	if agent == nil {
		return nil, fmt.Errorf("agent is required")
	}
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("report aggregator is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)

			return err
		}
	})

	s := &Server{
		echo:       e,
		agent:      agent,
		store:      store,
		aggregator: aggregator,
		logger:     logger,
	}

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.POST("/chat", s.handleChat)
	s.echo.POST("/next", s.handleNext)
	s.echo.POST("/end", s.handleEnd)
	s.echo.POST("/report", s.handleReport)
	s.echo.POST("/vapi-webhook", s.handleVapiWebhook)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ChatRequest drives both interview start (empty session_id) and answer
// handling.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Role      string `json:"role"`
}

// ChatResponse wraps the orchestrator envelope with the session id so clients
// can continue the conversation.
type ChatResponse struct {
	SessionID string             `json:"session_id"`
	Response  interview.Envelope `json:"response"`
}

// SessionRequest addresses an existing session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// ReportResponse carries the aggregated report for a session.
type ReportResponse struct {
	SessionID string         `json:"session_id"`
	Report    *report.Report `json:"report"`
}

// VapiRequest is the voice-mode webhook payload.
type VapiRequest struct {
	ConversationID string `json:"conversation_id"`
	Transcript     string `json:"transcript"`
}

// VapiResponse returns the bare message for the voice pipeline.
type VapiResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Interview Practice Partner backend running!",
	})
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.SessionID == "" {
		sessionID := newSessionID()
		role := strings.TrimSpace(req.Role)
		if role == "" {
			role = interview.DefaultRole
		}

		envelope, err := s.agent.StartInterview(sessionID, role)
		if err != nil {
			return s.mapError(err)
		}

		return c.JSON(http.StatusOK, ChatResponse{SessionID: sessionID, Response: envelope})
	}

	envelope, err := s.agent.HandleAnswer(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return s.mapError(err)
	}

	return c.JSON(http.StatusOK, ChatResponse{SessionID: req.SessionID, Response: envelope})
}

func (s *Server) handleNext(c echo.Context) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	envelope, err := s.agent.AskNextQuestion(req.SessionID)
	if err != nil {
		return s.mapError(err)
	}

	return c.JSON(http.StatusOK, ChatResponse{SessionID: req.SessionID, Response: envelope})
}

func (s *Server) handleEnd(c echo.Context) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	return c.JSON(http.StatusOK, ChatResponse{
		SessionID: req.SessionID,
		Response:  s.agent.EndInterview(req.SessionID),
	})
}

func (s *Server) handleReport(c echo.Context) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	session, err := s.store.Get(req.SessionID)
	if err != nil {
		return s.mapError(err)
	}

	pairs := report.PairsFromSession(session)

	result, err := s.aggregator.Aggregate(c.Request().Context(), session.Role, pairs)
	if err != nil {
		return s.mapError(err)
	}

	return c.JSON(http.StatusOK, ReportResponse{SessionID: req.SessionID, Report: result})
}

func (s *Server) handleVapiWebhook(c echo.Context) error {
	var req VapiRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.ConversationID == "" {
		conversationID := newSessionID()
		envelope, err := s.agent.StartInterview(conversationID, interview.DefaultRole)
		if err != nil {
			return s.mapError(err)
		}

		return c.JSON(http.StatusOK, VapiResponse{
			Response:       envelope.Message,
			ConversationID: conversationID,
		})
	}

	envelope, err := s.agent.HandleAnswer(c.Request().Context(), req.ConversationID, req.Transcript)
	if err != nil {
		return s.mapError(err)
	}

	return c.JSON(http.StatusOK, VapiResponse{
		Response:       envelope.Message,
		ConversationID: req.ConversationID,
	})
}

func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	case errors.Is(err, interview.ErrSessionCompleted):
		return echo.NewHTTPError(http.StatusConflict, "session already completed")
	case errors.Is(err, report.ErrEmptyTranscript):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "session has no transcript to evaluate")
	case errors.Is(err, ai.ErrDelegateUnavailable):
		s.logger.Warn("delegate unavailable", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "language model is unavailable, retry the turn")
	default:
		s.logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// newSessionID returns a short opaque id, enough to key one interview.
func newSessionID() string {
	return uuid.NewString()[:8]
}
