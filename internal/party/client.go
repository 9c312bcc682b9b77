package party

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection. It announces itself with a party:join
// frame and may keep its activity window open with party:heartbeat frames.
type Client struct {
	hub    *Hub
	engine *Engine
	conn   *websocket.Conn
	send   chan []byte

	// Room membership, owned by the hub loop after join.
	partyID string
	userID  string
}

// clientFrame is what clients send upstream.
type clientFrame struct {
	Type    string `json:"type"`
	PartyID string `json:"partyId"`
	UserID  string `json:"userId"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("party-service: ws read: %v", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendError(CodeInvalidRequest, "invalid JSON frame")
			continue
		}

		switch frame.Type {
		case "party:join":
			c.handleJoinFrame(frame)
		case "party:heartbeat":
			if _, err := c.engine.Heartbeat(frame.PartyID, frame.UserID); err != nil {
				c.sendAPIError(err)
			}
		default:
			c.sendError(CodeInvalidRequest, "unknown frame type")
		}
	}
}

func (c *Client) handleJoinFrame(frame clientFrame) {
	if frame.PartyID == "" || frame.UserID == "" {
		c.sendError(CodeInvalidRequest, "partyId and userId are required")
		return
	}
	count, ok := c.engine.presence(frame.PartyID)
	if !ok {
		c.sendError(CodePartyNotFound, "party not found")
		return
	}

	c.hub.join <- joinRequest{client: c, partyID: frame.PartyID, userID: frame.UserID}

	ack, err := json.Marshal(map[string]any{
		"type": "party:joined",
		"payload": map[string]any{
			"partyId":            frame.PartyID,
			"activeMembersCount": count,
		},
	})
	if err == nil {
		c.send <- ack
	}
}

func (c *Client) sendError(code, msg string) {
	data, err := json.Marshal(map[string]any{
		"type": EventError,
		"payload": map[string]string{
			"code":    code,
			"message": msg,
		},
	})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendAPIError(err error) {
	if pe, ok := err.(*partyError); ok {
		c.sendError(pe.code, pe.msg)
		return
	}
	c.sendError("INTERNAL", err.Error())
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
