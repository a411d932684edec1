package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"quizclash-backend/internal/hub"
	"quizclash-backend/internal/middleware"
)

// LobbyWS streams lobby events to a roster member. On disconnect the user
// leaves the lobby, which covers closed apps and dropped connections; a
// player who already started playing keeps their seat.
func (a *API) LobbyWS(w http.ResponseWriter, r *http.Request) {
	a.serveWS(w, r, true)
}

// MatchWS streams live match events. Disconnecting mid-match does not
// remove the player; settlement still counts their score.
func (a *API) MatchWS(w http.ResponseWriter, r *http.Request) {
	a.serveWS(w, r, false)
}

func (a *API) serveWS(w http.ResponseWriter, r *http.Request, leaveOnClose bool) {
	roomID, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		a.Log.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	userID, _, err := authUser(r)
	if err != nil {
		c.Close(InvalidAuthTokenError, "authentication failed")
		return
	}

	if _, err := a.Match.Lobby(r.Context(), roomID); err != nil {
		c.Close(InvalidRoomIDError, "unknown room")
		return
	}

	middleware.LogWebSocketConnect(a.Log, r.RemoteAddr, r.URL.Path)

	sub := a.Hub.Subscribe(roomID)
	defer sub.Close()

	if leaveOnClose {
		// Announce the connection to the room; the HTTP join endpoint only
		// covers the initial seat, not reconnects or the host's own socket.
		a.Hub.Publish(roomID, map[string]interface{}{
			"event":   "join",
			"user_id": userID.String(),
		})
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go a.writePump(ctx, c, sub)
	readErr := a.readPump(ctx, c, roomID, userID)

	if leaveOnClose {
		// Use a fresh context; the request context is already torn down.
		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer leaveCancel()
		if err := a.Match.Leave(leaveCtx, roomID, userID); err != nil {
			a.Log.Warnf("leave on disconnect failed for %s: %v", userID, err)
		}
	}

	middleware.LogWebSocketDisconnect(a.Log, r.RemoteAddr, r.URL.Path, readErr)
	c.Close(websocket.StatusNormalClosure, "bye")
}

// writePump forwards hub events to the socket until the subscription or the
// connection dies.
func (a *API) writePump(ctx context.Context, c *websocket.Conn, sub *hub.Subscriber) {
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-sub.Out:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// readPump relays inbound JSON frames to the rest of the room, tagged with
// the sender. Non-JSON frames are dropped but still keep the connection
// alive and reveal disconnects.
func (a *API) readPump(ctx context.Context, c *websocket.Conn, roomID, userID uuid.UUID) error {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		msg["user_id"] = userID.String()
		a.Hub.Publish(roomID, msg)
	}
}
