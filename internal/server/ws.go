package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Halfis/Connect4/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type wsClient struct {
	username string
	conn     *websocket.Conn
	send     chan []byte
	server   *Server
	gameID   string
}

// clientMessage is what the browser sends: {"type":"move","column":3} or
// {"type":"restart","difficulty":"hard"}.
type clientMessage struct {
	Type       string `json:"type"`
	Column     *int   `json:"column,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
		return
	}
	d, err := parseDifficulty(c.Query("difficulty"))
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &wsClient{
		username: username,
		conn:     conn,
		send:     make(chan []byte, 8),
		server:   s,
		gameID:   c.Query("gameId"),
	}
	s.register(client)

	go client.writePump()
	go client.readPump(d)
}

func (s *Server) register(c *wsClient) {
	s.connMu.Lock()
	if old, ok := s.connections[c.username]; ok {
		close(old.send)
	}
	s.connections[c.username] = c
	s.connMu.Unlock()
}

func (s *Server) unregister(c *wsClient) {
	s.connMu.Lock()
	if cur, ok := s.connections[c.username]; ok && cur == c {
		delete(s.connections, c.username)
		close(c.send)
	}
	s.connMu.Unlock()
	c.conn.Close()
}

func (c *wsClient) writePump() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump joins the requested game, or the user's unfinished one, or starts
// a new game, then serves moves until the socket closes. A dropped socket
// leaves the game running; the idle sweeper forfeits it.
func (c *wsClient) readPump(d game.Difficulty) {
	defer c.server.unregister(c)
	s := c.server

	joined := false
	if c.gameID != "" {
		if snap, ok := s.manager.GetGame(c.gameID); ok && snap.Username == c.username && snap.State == game.InProgress {
			c.sendJSON(initMessage(game.MoveResult{Resumed: true, Game: snap}))
			joined = true
		}
	}
	if !joined {
		res, err := s.manager.StartGame(c.username, d)
		if err != nil {
			c.sendError(err)
			return
		}
		s.publishStart(res)
		c.gameID = res.Game.ID
		c.sendJSON(initMessage(res))
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(gin.H{"type": "error", "message": "malformed message"})
			continue
		}
		switch msg.Type {
		case "move":
			if msg.Column == nil {
				c.sendJSON(gin.H{"type": "error", "message": "column required"})
				continue
			}
			res, err := s.manager.HandleMove(game.Move{
				Username: c.username,
				GameID:   c.gameID,
				Column:   *msg.Column,
			})
			if err != nil {
				c.sendError(err)
				continue
			}
			s.publishMove(res)
			c.sendJSON(stateMessage(res))
		case "restart":
			nd := d
			if msg.Difficulty != "" {
				parsed, err := game.ParseDifficulty(msg.Difficulty)
				if err != nil {
					c.sendError(err)
					continue
				}
				nd = parsed
			}
			res, err := s.manager.Restart(c.username, nd)
			if err != nil {
				c.sendError(err)
				continue
			}
			d = nd
			s.publishStart(res)
			c.gameID = res.Game.ID
			c.sendJSON(initMessage(res))
		default:
			c.sendJSON(gin.H{"type": "error", "message": "unknown message type"})
		}
	}
}

func initMessage(res game.MoveResult) gin.H {
	return gin.H{
		"type":      "init",
		"gameId":    res.Game.ID,
		"you":       res.Game.Username,
		"resumed":   res.Resumed,
		"machine":   res.Machine,
		"game":      res.Game,
		"timestamp": time.Now().UTC(),
	}
}

func stateMessage(res game.MoveResult) gin.H {
	return gin.H{
		"type":    "state",
		"player":  res.Player,
		"machine": res.Machine,
		"search":  res.Search,
		"game":    res.Game,
	}
}

func (c *wsClient) sendError(err error) {
	c.sendJSON(gin.H{"type": "error", "message": err.Error(), "status": statusFor(err)})
}

// sendJSON drops the message when the client is not keeping up.
func (c *wsClient) sendJSON(v any) {
	data, _ := json.Marshal(v)
	c.server.connMu.RLock()
	defer c.server.connMu.RUnlock()
	if c.server.connections[c.username] != c {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
