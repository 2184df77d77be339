package server

import (
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsWebSocketReceivesReloadEvents(t *testing.T) {
	srv, _, catalogPath := testServer(t)

	// Run the hub like Start would.
	go srv.Run()
	defer srv.cancel()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the hub a beat to register the client, then trigger a reload.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(catalogPath, []byte("solo:\n  display_name: Solo\n"), 0o644))
	w := doRequest(t, srv, "POST", "/config/reload", nil)
	require.Equal(t, 200, w.Code)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck
	var event map[string]interface{}
	require.NoError(t, conn.ReadJSON(&event))

	assert.Equal(t, "catalog_reloaded", event["type"])
	assert.Equal(t, float64(1), event["nodes"])
	assert.NotEmpty(t, event["at"])
}

func TestBroadcastEventNeverBlocks(t *testing.T) {
	srv, _, _ := testServer(t)
	// No hub running: the buffered queue fills, then events drop silently.
	for i := 0; i < 200; i++ {
		srv.BroadcastEvent(map[string]interface{}{"type": "noop"})
	}
}
