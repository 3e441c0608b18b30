package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jnavarro/taskboard/internal/testutil"
	"github.com/jnavarro/taskboard/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketEndpoint_RejectsBadTokens(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name string
		url  string
	}{
		{name: "missing token", url: ts.WebSocketURL("")},
		{name: "garbage token", url: ts.WebSocketURL("garbage")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := ws.DefaultDialer.Dial(tt.url, nil)
			require.Error(t, err)
			if conn != nil {
				conn.Close()
			}
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestWebSocketEndpoint_StreamsTaskEvents(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	conn, resp, err := ws.DefaultDialer.Dial(ts.WebSocketURL(token), nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	// Give the hub a moment to finish registering the connection
	time.Sleep(100 * time.Millisecond)

	body := map[string]string{"title": "Streamed task"}
	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/tasks"), body, token)
	createResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	createResp.Body.Close()
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event websocket.TaskEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "task.created", event.Type)
	require.NotNil(t, event.Task)
	assert.Equal(t, "Streamed task", event.Task.Title)
}
