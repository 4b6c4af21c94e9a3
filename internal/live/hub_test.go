package live

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/topics/:name", Handler(hub,
		func(c *gin.Context) (string, bool) {
			name := c.Param("name")
			return "t:" + name, name != "missing"
		},
		func(c *gin.Context) *Event {
			return &Event{Type: "hello", Data: c.Param("name")}
		},
	))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestPublishReachesOnlyTopicSubscribers(t *testing.T) {
	hub := NewHub()
	srv := newServer(t, hub)

	a := dial(t, srv, "/topics/a")
	b := dial(t, srv, "/topics/b")

	var ev Event
	require.NoError(t, a.ReadJSON(&ev))
	assert.Equal(t, "hello", ev.Type)
	assert.Equal(t, "a", ev.Data)
	require.NoError(t, b.ReadJSON(&ev))

	waitFor(t, func() bool { return hub.Subscribers("t:a") == 1 && hub.Subscribers("t:b") == 1 })

	hub.Publish("t:a", Event{Type: "view", Session: "a"})

	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, a.ReadJSON(&ev))
	assert.Equal(t, "view", ev.Type)
	assert.Equal(t, "a", ev.Session)
	assert.False(t, ev.At.IsZero())

	require.NoError(t, b.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err, "b is on another topic")
}

func TestCloseTopicDisconnects(t *testing.T) {
	hub := NewHub()
	srv := newServer(t, hub)
	ws := dial(t, srv, "/topics/x")

	var ev Event
	require.NoError(t, ws.ReadJSON(&ev))
	waitFor(t, func() bool { return hub.Subscribers("t:x") == 1 })

	hub.CloseTopic("t:x", Event{Type: "session.closed"})
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, "session.closed", ev.Type)

	_, _, err := ws.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Stats().WSClients)
}

func TestHandlerRejectsUnknownTopic(t *testing.T) {
	hub := NewHub()
	srv := newServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/topics/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "session:abc", SessionTopic("abc"))
	assert.Equal(t, "library:u1", LibraryTopic("u1"))
}
