package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = 30 * time.Second

	maxMessageSize = 512 * 1024 // drawing batches can be large

	sendQueueSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection known to the hub.
type Client struct {
	ID   uuid.UUID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Serve upgrades the request and runs the connection's pumps. Every inbound
// frame is handed to onMessage; onClose fires once when the connection dies.
// rooms are joined before any message can be delivered.
func Serve(h *Hub, w http.ResponseWriter, r *http.Request, rooms []string,
	onMessage func(c *Client, raw []byte), onClose func(c *Client)) (*Client, error) {

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws.Serve] upgrade failed: %v", err)
		return nil, err
	}

	c := &Client{
		ID:   uuid.New(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}
	h.register(c)
	for _, room := range rooms {
		h.Join(room, c)
	}

	go c.writePump()
	go c.readPump(onMessage, onClose)
	return c, nil
}

// enqueue hands bytes to the write pump. A full queue drops the message
// rather than blocking the sender; order of delivered messages is kept.
func (c *Client) enqueue(raw []byte) {
	select {
	case c.send <- raw:
	default:
		log.Printf("[Client.enqueue] client=%s send queue full, dropping message", c.ID)
	}
}

func (c *Client) readPump(onMessage func(c *Client, raw []byte), onClose func(c *Client)) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
		if onClose != nil {
			onClose(c)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Client.readPump] client=%s read error: %v", c.ID, err)
			}
			return
		}
		onMessage(c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				log.Printf("[Client.writePump] client=%s write error: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
