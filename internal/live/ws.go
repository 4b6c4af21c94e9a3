package live

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mangashelf/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades the request and subscribes the connection to the topic
// returned by topicOf. first, when non-nil, is sent before any published
// event. The handler returns once the client disconnects.
func Handler(hub *Hub, topicOf func(c *gin.Context) (topic string, ok bool), first func(c *gin.Context) *Event) gin.HandlerFunc {
	log := logging.Component("ws")
	return func(c *gin.Context) {
		topic, ok := topicOf(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		welcome := Event{Type: "welcome", At: time.Now().UTC()}
		if first != nil {
			if ev := first(c); ev != nil {
				welcome = *ev
			}
		}
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(welcome); err != nil {
			_ = ws.Close()
			return
		}

		hub.Add(topic, ws)
		log.Debug().Str("topic", topic).Msg("client connected")

		// Incoming messages are ignored; reading detects the disconnect.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(topic, ws)
		log.Debug().Str("topic", topic).Msg("client disconnected")
	}
}
