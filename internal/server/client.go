package server

import (
	"encoding/json"
	"log"

	"github.com/delaneyj/coiled/bind"
	"github.com/delaneyj/coiled/internal/demo"
	"github.com/gorilla/websocket"
)

type command struct {
	Op    string `json:"op"`
	Value int    `json:"value,omitempty"`
}

type message struct {
	Type  string     `json:"type"`
	View  *demo.View `json:"view,omitempty"`
	Error string     `json:"error,omitempty"`
}

type client struct {
	scope *bind.Scope
	send  chan []byte
	dirty bool
}

// push must only be called from the loop. A client that cannot keep up
// loses messages rather than stalling the loop.
func (c *client) push(msg message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("websocket client too slow, dropping %s message", msg.Type)
	}
}

// writeLoop closes conn once the loop drops the client, which also ends the
// handler's read loop.
func (c *client) writeLoop(conn *websocket.Conn) {
	defer conn.Close()
	for data := range c.send {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
