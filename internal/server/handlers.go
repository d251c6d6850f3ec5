package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raphaelgruber/studymate/internal/models"
)

const maxMessageSize = 10 << 10 // 10KB per chat message

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// handleChat processes one user turn and returns the assistant's reply.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if len(req.Message) > maxMessageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message too long"})
		return
	}

	sess := s.session(req.SessionID)
	reply := s.bot.HandleMessage(c.Request.Context(), sess, req.Message)

	c.JSON(http.StatusOK, chatResponse{
		SessionID: sess.ID,
		Reply:     reply,
	})
}

// handleHistory returns the session's conversation log in append order.
func (s *Server) handleHistory(c *gin.Context) {
	id := c.Query("session_id")
	sess := s.sessions.Get(id)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	log := sess.Log()
	if log == nil {
		log = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"messages":   log,
	})
}

// handleReset clears the session's conversation log. Stored memories and
// calendar data are untouched.
func (s *Server) handleReset(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	sess := s.sessions.Get(req.SessionID)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	sess.Reset()
	s.logger.Info("conversation reset", "session", sess.ID)
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID})
}

// handleStats reports interaction statistics for a session.
func (s *Server) handleStats(c *gin.Context) {
	id := c.Query("session_id")
	sess := s.sessions.Get(id)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess.Stats())
}
