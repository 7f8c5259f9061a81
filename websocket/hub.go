package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// The hub is the in-app/real-time leg of the notification dispatcher: balance
// refreshes and payout status changes are pushed to the owning instructor's
// open connection. Delivery is best-effort; a closed or absent connection is
// never an error for the caller.

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		}
	}
}

func PushToUser(userID uuid.UUID, event Event) {
	clientsMu.RLock()
	conn, ok := clients[userID]
	clientsMu.RUnlock()
	if !ok {
		return
	}

	if err := conn.WriteJSON(event); err != nil {
		log.Printf("Error pushing %s event to client %s: %v", event.Type, userID, err)
		conn.Close()
		clientsMu.Lock()
		if current, ok := clients[userID]; ok && current == conn {
			delete(clients, userID)
		}
		clientsMu.Unlock()
	}
}

// PushBalanceRefresh tells the instructor's dashboard to re-fetch its balance
// summary after a ledger or workflow mutation.
func PushBalanceRefresh(instructorID uuid.UUID) {
	PushToUser(instructorID, Event{Type: "balance.refresh"})
}

// PushPayoutStatus notifies the instructor that a payout request changed state.
func PushPayoutStatus(instructorID uuid.UUID, request interface{}) {
	PushToUser(instructorID, Event{Type: "payout.status", Payload: request})
}

// UpgradeRequired gates the websocket route on a proper upgrade request.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ServeWS registers the connection for the user in the path and keeps it open
// until the peer goes away. Incoming frames are drained and ignored; the
// channel is push-only.
func ServeWS() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, err := uuid.Parse(conn.Params("userId"))
		if err != nil {
			conn.Close()
			return
		}

		client := &Client{UserID: userID, Conn: conn}
		Register <- client
		defer func() {
			Unregister <- client
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
