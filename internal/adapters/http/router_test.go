package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Office/internal/app"
	"github.com/dkeye/Office/internal/app/office"
	"github.com/dkeye/Office/internal/app/orch"
	"github.com/dkeye/Office/internal/config"
	"github.com/dkeye/Office/internal/core"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	rooms := app.NewRoomManager(ctx, office.Options{Seats: 2})
	rooms.EnsurePublicRoom("public", "Lobby")
	o := &orch.Orchestrator{Registry: app.NewRegistry(), Rooms: rooms}

	cfg := &config.Config{
		Mode:                "test",
		Secret:              "test-secret",
		PingPeriod:          30 * time.Second,
		SendQueue:           32,
		PublicRoomID:        "public",
		RequestRateLimit:    1,
		RequestRateInterval: time.Minute,
	}
	srv := httptest.NewServer(SetupRouter(ctx, cfg, o))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		rooms.Wait()
	})
	return srv
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(v any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(v))
}

// await skips frames until one of type typ arrives and decodes it into out.
func (c *wsClient) await(typ protocol.Type, out any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "waiting for %s", typ)
		got, err := protocol.PeekType(data)
		require.NoError(c.t, err)
		if got != typ {
			continue
		}
		if out != nil {
			require.NoError(c.t, json.Unmarshal(data, out))
		}
		return
	}
}

func (c *wsClient) whoami() protocol.WhoAmI {
	c.send(protocol.Simple{Type: protocol.TypeWhoAmI})
	var me protocol.WhoAmI
	c.await(protocol.TypeWhoAmI, &me)
	return me
}

func TestHealthAndClientToken(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == "ct" && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "client token cookie is issued")
}

func TestRoomsAPI(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/rooms", "application/json", strings.NewReader(`{"name":"Design"}`))
	require.NoError(t, err)
	var created CreateRoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.ID)

	resp, err = http.Get(srv.URL + "/api/rooms")
	require.NoError(t, err)
	var list []core.RoomInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Len(t, list, 2)

	resp, err = http.Get(srv.URL + "/api/rooms/" + string(created.ID))
	require.NoError(t, err)
	var st protocol.RoomState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	resp.Body.Close()
	assert.Equal(t, created.Name, st.RoomName)
	assert.Len(t, st.Seats, 2)
	assert.Empty(t, st.Players)

	resp, err = http.Get(srv.URL + "/api/rooms/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/rooms", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignalAccessFlow(t *testing.T) {
	srv := newServer(t)
	host := dial(t, srv)
	viewer := dial(t, srv)

	host.send(protocol.Join{Type: protocol.TypeJoin, Name: "Ann"})
	var st protocol.RoomState
	host.await(protocol.TypeRoomState, &st)
	assert.Equal(t, "public", string(st.Room))

	viewer.send(protocol.Join{Type: protocol.TypeJoin, Name: "Bob"})
	viewer.await(protocol.TypeRoomState, nil)
	host.await(protocol.TypePlayerJoined, nil)

	hostID := host.whoami().ID
	viewerID := viewer.whoami().ID
	require.NotEqual(t, hostID, viewerID)

	host.send(protocol.SeatMessage{Type: protocol.TypeStartShare, SeatID: "1"})
	var started protocol.SeatMessage
	viewer.await(protocol.TypeStartShare, &started)
	assert.Equal(t, hostID, started.HostID)

	viewer.send(protocol.RequestAccess{Type: protocol.TypeRequestAccess, SeatID: "1", AccessType: "view"})
	var req protocol.AccessRequested
	host.await(protocol.TypeAccessRequested, &req)
	assert.Equal(t, viewerID, req.RequesterID)

	host.send(protocol.RespondAccess{Type: protocol.TypeRespondAccess, SeatID: "1", RequesterID: viewerID, Approved: true})
	var ok protocol.AccessApproved
	viewer.await(protocol.TypeAccessApproved, &ok)
	assert.Equal(t, hostID, ok.SharerID)
	assert.Equal(t, "view", string(ok.AccessType))

	viewer.send(protocol.RequestAccess{Type: protocol.TypeRequestAccess, SeatID: "1", AccessType: "control"})
	var limited protocol.Error
	viewer.await(protocol.TypeError, &limited)
	assert.Equal(t, "rate_limited", limited.Error)
}

func TestSignalRequiresRoom(t *testing.T) {
	srv := newServer(t)
	c := dial(t, srv)

	c.send(protocol.SeatMessage{Type: protocol.TypeConnectSeat, SeatID: "1"})
	var e protocol.Error
	c.await(protocol.TypeError, &e)
	assert.Equal(t, "not_in_room", e.Error)

	c.send(protocol.Join{Type: protocol.TypeJoin, Room: "nowhere"})
	c.await(protocol.TypeError, &e)
	assert.Equal(t, "room_not_found", e.Error)

	c.send(protocol.Simple{Type: protocol.TypePing})
	c.await(protocol.TypePong, nil)
}
