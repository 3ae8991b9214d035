package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadHubBroadcast(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.cfg.Server.Dev = true
	srv.hub = NewReloadHub(srv.log)
	srv.router = srv.buildRouter()

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	defer srv.hub.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/__reload"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Registration happens just after the handshake; wait for it before
	// broadcasting.
	require.Eventually(t, func() bool {
		srv.hub.mu.Lock()
		defer srv.hub.mu.Unlock()
		return len(srv.hub.conns) == 1
	}, 5*time.Second, 10*time.Millisecond)

	srv.hub.Broadcast()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "reload", string(msg))
}

func TestReloadEndpointAbsentOutsideDevMode(t *testing.T) {
	srv := newTestServer(t, nil)
	require.Nil(t, srv.Hub())

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/__reload"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil {
		resp.Body.Close()
	}
	if conn != nil {
		conn.Close()
	}
	assert.Error(t, err, "upgrade must fail when the route falls through to HTML rendering")
}
