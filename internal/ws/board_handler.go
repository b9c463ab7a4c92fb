package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/plinko"
)

// BoardHub is the single hub for the board.
var BoardHub *Hub

func init() {
	BoardHub = NewHub()
	go runBoardHub(BoardHub)
}

// StartDropData is sent by a client releasing a chip.
type StartDropData struct {
	PlayerName string   `json:"player_name"`
	ChipColor  string   `json:"chip_color"`
	StartX     *float64 `json:"start_x,omitempty"`
}

func newClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "c_" + hex.EncodeToString(b)
}

// HandleWebSocket attaches a viewer to the board. The optional name query
// parameter is used as the player name for drops started over the socket.
func HandleWebSocket(c *gin.Context) {
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "board not ready"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:       conn,
		id:         newClientID(),
		playerName: c.Query("name"),
		send:       make(chan []byte, 256),
	}

	BoardHub.register <- client

	go client.writePump()
	go client.readPump()
}

func boardState() map[string]interface{} {
	drops := game.Manager.ActiveDrops()
	if drops == nil {
		drops = []plinko.DropSnapshot{}
	}
	return map[string]interface{}{
		"type":   "board_state",
		"layout": game.Manager.Layout(),
		"drops":  drops,
	}
}

func runBoardHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			n := len(h.clients)
			h.mu.Unlock()

			log.Printf("[WS] Client %s connected (%d watching)", client.id, n)
			if game.Manager != nil {
				h.SendToClient(client.id, boardState())
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				delete(h.clients, client.id)
				close(client.send)
				log.Printf("[WS] Client %s disconnected", client.id)
			}
			h.mu.Unlock()
		}
	}
}

// readPump reads client messages until the connection closes.
func (c *Client) readPump() {
	defer func() {
		BoardHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage processes incoming board messages.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "start_drop":
		var data StartDropData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("Invalid drop data")
				return
			}
		}
		if data.PlayerName == "" {
			data.PlayerName = c.playerName
		}
		id, err := game.Manager.StartDrop(game.DropRequest{
			PlayerName: data.PlayerName,
			ChipColor:  data.ChipColor,
			StartX:     data.StartX,
			Auto:       true,
		})
		if err != nil {
			switch {
			case errors.Is(err, plinko.ErrMissingPlayer):
				c.sendError("Enter your name first")
			case errors.Is(err, game.ErrTooManyDrops):
				c.sendError("Too many chips in play, try again shortly")
			default:
				log.Printf("[WS] start_drop for client %s failed: %v", c.id, err)
				c.sendError("Could not start drop")
			}
			return
		}
		BoardHub.SendToClient(c.id, map[string]interface{}{"type": "drop_accepted", "drop_id": id})

	case "sync":
		BoardHub.SendToClient(c.id, boardState())

	default:
		c.sendError("Unknown message type: " + msg.Type)
	}
}
