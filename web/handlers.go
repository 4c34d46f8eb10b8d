package web

import (
	"context"
	"net/http"
	"strings"

	"match-agent/errors"
	"match-agent/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const historyWindow = 20

type chatResponse struct {
	SessionID string `json:"session_id"`
	types.TurnResult
}

// handleChat runs one matchmaking turn. Session state is reconciled around
// the orchestrator call: load the carried context before, persist the
// updated one after, last writer wins.
func (s *Server) handleChat(c *gin.Context) {
	req, sessionID, ok := s.bindTurn(c, "match")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	carried, err := s.store.LoadContext(ctx, sessionID)
	if err != nil {
		s.fail(c, "load session state", err)
		return
	}
	history, err := s.store.GetHistory(ctx, sessionID, historyWindow)
	if err != nil {
		s.fail(c, "load history", err)
		return
	}

	s.recordUserMessage(ctx, sessionID, req)

	result, err := s.orch.Run(ctx, req, carried, toAgentMessages(history))
	if err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown user"})
			return
		}
		s.fail(c, "run turn", err)
		return
	}

	if err := s.store.AddMessage(ctx, sessionID, "assistant", result.Reply); err != nil {
		s.logger.Warn("Could not persist assistant message", zap.Error(err))
	}
	if err := s.store.SaveContext(ctx, sessionID, result.Context); err != nil {
		s.logger.Warn("Could not persist session state", zap.Error(err))
	}

	c.JSON(http.StatusOK, chatResponse{SessionID: sessionID.String(), TurnResult: result})
}

// handleOnboarding runs one profile-interview turn.
func (s *Server) handleOnboarding(c *gin.Context) {
	req, sessionID, ok := s.bindTurn(c, "onboarding")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	history, err := s.store.GetHistory(ctx, sessionID, 0)
	if err != nil {
		s.fail(c, "load history", err)
		return
	}

	s.recordUserMessage(ctx, sessionID, req)

	result, err := s.orch.RunOnboarding(ctx, req, toAgentMessages(history))
	if err != nil {
		s.fail(c, "run onboarding turn", err)
		return
	}

	if err := s.store.AddMessage(ctx, sessionID, "assistant", result.Reply); err != nil {
		s.logger.Warn("Could not persist assistant message", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID.String(),
		"reply":      result.Reply,
		"done":       result.Done,
		"reason":     result.Reason,
	})
}

// handleSocialAssess judges whether a chat between two matched users has
// reached a natural end.
func (s *Server) handleSocialAssess(c *gin.Context) {
	var body struct {
		Messages []types.AgentMessage `json:"messages"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sig := s.orch.CheckSocialEnd(c.Request.Context(), body.Messages)
	c.JSON(http.StatusOK, sig)
}

// handleUpsertUser registers or updates a user's hard attributes.
func (s *Server) handleUpsertUser(c *gin.Context) {
	var basic types.CandidateBasic
	if err := c.ShouldBindJSON(&basic); err != nil || basic.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user payload"})
		return
	}
	if err := s.store.UpsertBasic(c.Request.Context(), basic); err != nil {
		s.fail(c, "upsert user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": basic.ID})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindTurn validates the request, reconciles the session id, and ensures
// the session row exists.
func (s *Server) bindTurn(c *gin.Context, kind string) (types.TurnRequest, uuid.UUID, bool) {
	var req types.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return req, uuid.Nil, false
	}
	if req.UserID == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and message are required"})
		return req, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if req.SessionID == "" || err != nil {
		sessionID = uuid.New()
	}
	req.SessionID = sessionID.String()

	if err := s.store.EnsureSession(c.Request.Context(), sessionID, req.UserID, kind); err != nil {
		s.fail(c, "ensure session", err)
		return req, uuid.Nil, false
	}
	return req, sessionID, true
}

// recordUserMessage appends the utterance to the transcript and the
// snippet store. The snippets are what later turns cite as evidence, so a
// write failure is logged loudly but does not block the turn.
func (s *Server) recordUserMessage(ctx context.Context, sessionID uuid.UUID, req types.TurnRequest) {
	if err := s.store.AddMessage(ctx, sessionID, "user", req.Message); err != nil {
		s.logger.Warn("Could not persist user message", zap.Error(err))
	}
	if err := s.store.AddSnippets(ctx, req.UserID, sessionID, req.Message); err != nil {
		s.logger.Warn("Could not store dialogue snippets", zap.Error(err))
	}
}

func (s *Server) fail(c *gin.Context, what string, err error) {
	s.logger.Error("Request failed", zap.String("op", what), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func toAgentMessages(history []types.ChatMessage) []types.AgentMessage {
	out := make([]types.AgentMessage, 0, len(history))
	for _, msg := range history {
		out = append(out, types.AgentMessage{Role: msg.Role, Content: msg.Content})
	}
	return out
}
