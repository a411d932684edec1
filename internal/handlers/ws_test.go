package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizclash-backend/internal/models"
)

func dialWS(t *testing.T, ctx context.Context, srv *httptest.Server, path string) (*websocket.Conn, error) {
	t.Helper()
	url := strings.Replace(srv.URL, "http", "ws", 1) + path
	c, _, err := websocket.Dial(ctx, url, nil)
	return c, err
}

func TestLobbyWSAnnouncesJoin(t *testing.T) {
	ta := newTestAPI(t)
	hostID, hostToken := ta.newPlayer(t, models.RolePlayer)
	lobby := createLobbyVia(t, ta, hostToken)

	srv := httptest.NewServer(ta.mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := dialWS(t, ctx, srv, "/ws/lobby/"+lobby.ID.String()+"?token="+hostToken)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "done")

	_, data, err := c.Read(ctx)
	require.NoError(t, err)

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "join", ev["event"])
	assert.Equal(t, hostID.String(), ev["user_id"])
}

func TestLobbyWSUnknownRoom(t *testing.T) {
	ta := newTestAPI(t)
	_, token := ta.newPlayer(t, models.RolePlayer)

	srv := httptest.NewServer(ta.mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := dialWS(t, ctx, srv, "/ws/lobby/"+uuid.NewString()+"?token="+token)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "done")

	_, _, err = c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(InvalidRoomIDError), websocket.CloseStatus(err))
}

func TestLobbyWSRejectsBadToken(t *testing.T) {
	ta := newTestAPI(t)
	_, hostToken := ta.newPlayer(t, models.RolePlayer)
	lobby := createLobbyVia(t, ta, hostToken)

	srv := httptest.NewServer(ta.mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := dialWS(t, ctx, srv, "/ws/lobby/"+lobby.ID.String()+"?token=garbage")
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "done")

	_, _, err = c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(InvalidAuthTokenError), websocket.CloseStatus(err))
}
