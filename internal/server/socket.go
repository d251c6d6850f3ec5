package server

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// socketInbound is one user message over the websocket.
type socketInbound struct {
	Message string `json:"message"`
}

// socketOutbound is one assistant reply over the websocket.
type socketOutbound struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// handleSocket upgrades to a websocket and runs the chat loop: one reply per
// received message, in order. One socket maps to one session.
func (s *Server) handleSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess := s.session(c.Query("session_id"))
	s.logger.Info("chat socket opened", "session", sess.ID)

	for {
		var in socketInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("chat socket read failed", "session", sess.ID, "error", err)
			}
			return
		}
		if in.Message == "" || len(in.Message) > maxMessageSize {
			continue
		}

		reply := s.bot.HandleMessage(c.Request.Context(), sess, in.Message)

		if err := conn.WriteJSON(socketOutbound{SessionID: sess.ID, Reply: reply}); err != nil {
			s.logger.Warn("chat socket write failed", "session", sess.ID, "error", err)
			return
		}
	}
}
