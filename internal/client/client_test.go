package client

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/Office/internal/client/negotiation"
	"github.com/dkeye/Office/internal/client/proximity"
	"github.com/dkeye/Office/internal/config"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	client *Client
	conn   *fakeConn
	ts     *transports
	cancel context.CancelFunc
	done   chan error
}

func testConfig() *config.Client {
	return &config.Client{
		Room:               "public",
		Name:               "ann",
		Tick:               5 * time.Millisecond,
		ConnectDistance:    80,
		DisconnectDistance: 120,
		Zone:               proximity.DefaultConfig().Zone,
	}
}

func start(t *testing.T, cfg *config.Client) *harness {
	t.Helper()
	return startWith(t, cfg, Options{})
}

// startWith runs a client; unset capturers are replaced by working fakes.
func startWith(t *testing.T, cfg *config.Client, opts Options) *harness {
	t.Helper()
	h := &harness{
		conn: newFakeConn(),
		ts:   &transports{all: make(map[string]*fakeTransport)},
		done: make(chan error, 1),
	}
	opts.Transports = h.ts.factory
	if opts.Screen == nil {
		opts.Screen = fakeCapturer{id: "screen"}
	}
	if opts.Camera == nil {
		opts.Camera = fakeCapturer{id: "camera"}
	}
	h.client = New(cfg, opts)
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.client.Run(ctx, h.conn) }()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func (h *harness) join(t *testing.T, players ...protocol.PlayerState) {
	t.Helper()
	h.conn.expect(t, protocol.TypeJoin)
	h.conn.deliver(t, protocol.RoomState{
		Type:    protocol.TypeRoomState,
		Room:    "public",
		You:     "me",
		Players: append([]protocol.PlayerState{{ID: "me", Name: "ann", X: 10, Y: 10}}, players...),
		Seats:   []protocol.SeatState{{ID: "0"}, {ID: "1"}},
	})
	h.conn.expect(t, protocol.TypeReadyToConnect)
}

func TestJoinBuildsView(t *testing.T) {
	h := start(t, testConfig())

	raw := h.conn.expect(t, protocol.TypeJoin)
	var j protocol.Join
	require.NoError(t, protocol.Decode(raw, &j))
	assert.Equal(t, "public", j.Room)
	assert.Equal(t, "ann", j.Name)

	_, err := h.client.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNotJoined)

	h.conn.deliver(t, protocol.RoomState{
		Type:    protocol.TypeRoomState,
		Room:    "public",
		You:     "me",
		Players: []protocol.PlayerState{{ID: "me", Name: "ann"}, {ID: "bob", Name: "bob"}},
		Seats:   []protocol.SeatState{{ID: "0"}, {ID: "1", HostID: "bob", ConnectedUsers: []domain.UserID{"bob"}}},
	})
	h.conn.expect(t, protocol.TypeReadyToConnect)

	v, err := h.client.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("me"), v.Self)
	assert.Equal(t, domain.RoomID("public"), v.Room)
	require.Len(t, v.Players, 2)
	assert.Equal(t, domain.UserID("bob"), v.Players[0].ID)
	require.Len(t, v.Seats, 2)
	assert.Equal(t, domain.UserID("bob"), v.Seats[1].Host)
	assert.Equal(t, negotiation.Idle{}, v.Seats[0].State)

	h.ts.get(t, "me-ss")
	h.ts.get(t, "me-av")
}

func TestClaimAndRequestThroughClient(t *testing.T) {
	h := start(t, testConfig())
	h.join(t)
	ctx := context.Background()

	require.NoError(t, h.client.Interact(ctx, "0"))
	h.conn.expect(t, protocol.TypeConnectSeat)
	h.conn.expect(t, protocol.TypeStartShare)

	h.conn.deliver(t, protocol.SeatMessage{Type: protocol.TypeStartShare, SeatID: "1", HostID: "bob"})
	require.NoError(t, h.client.RequestAccess(ctx, "1", domain.AccessControl))
	raw := h.conn.expect(t, protocol.TypeRequestAccess)
	var req protocol.RequestAccess
	require.NoError(t, protocol.Decode(raw, &req))
	assert.Equal(t, domain.SeatID("1"), req.SeatID)
	assert.Equal(t, domain.AccessControl, req.AccessType)

	h.conn.deliver(t, protocol.AccessApproved{Type: protocol.TypeAccessApproved, SeatID: "1", SharerID: "bob", AccessType: domain.AccessControl})
	v, err := h.client.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, negotiation.ViewingGranted{Sharer: "bob", Type: domain.AccessControl}, v.Seats[1].State)

	err = h.client.SendInput(ctx, "0", protocol.ControlKey, protocol.KeyPayload{Code: "KeyA", Down: true})
	assert.ErrorIs(t, err, ErrNoControl)
	assert.ErrorIs(t, h.client.StopShare(ctx, "1"), negotiation.ErrInvalidTransition)
}

func TestAutoApproveCallsViewer(t *testing.T) {
	cfg := testConfig()
	cfg.AutoApprove = true
	h := start(t, cfg)
	h.join(t)
	ctx := context.Background()

	require.NoError(t, h.client.Claim(ctx, "0"))
	require.NoError(t, h.client.StartShare(ctx, "0"))
	h.conn.deliver(t, protocol.AccessRequested{Type: protocol.TypeAccessRequested, SeatID: "0", RequesterID: "v1", AccessType: domain.AccessView})

	raw := h.conn.expect(t, protocol.TypeRespondAccess)
	var resp protocol.RespondAccess
	require.NoError(t, protocol.Decode(raw, &resp))
	assert.True(t, resp.Approved)
	assert.Equal(t, domain.UserID("v1"), resp.RequesterID)
	assert.Equal(t, domain.AccessView, resp.AccessType)

	ss := h.ts.get(t, "me-ss")
	assert.Equal(t, "v1-ss", recv(t, ss.calls))
}

func TestProximityJoinsConference(t *testing.T) {
	h := start(t, testConfig())
	h.join(t, protocol.PlayerState{ID: "bob", X: 700, Y: 500, VideoConnected: true})
	ctx := context.Background()

	require.NoError(t, h.client.Move(ctx, 700, 520, "walk"))
	h.conn.expect(t, protocol.TypeUpdatePlayer)
	h.conn.expect(t, protocol.TypeVideoConnected)

	h.conn.deliver(t, protocol.PlayerEvent{Type: protocol.TypePlayerUpdated, Player: protocol.PlayerState{ID: "me", X: 700, Y: 520, VideoConnected: true}})
	av := h.ts.get(t, "me-av")
	assert.Equal(t, "bob-av", recv(t, av.calls))

	v, err := h.client.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, v.Conference)
	assert.Equal(t, []domain.UserID{"bob"}, v.Peers)

	h.conn.deliver(t, protocol.PlayerLeft{Type: protocol.TypePlayerLeft, ID: "bob"})
	require.Eventually(t, func() bool {
		v, err := h.client.Snapshot(ctx)
		return err == nil && len(v.Peers) == 0 && len(v.Players) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestConferenceCaptureFailureRollsBack(t *testing.T) {
	ui := noticeUI{notices: make(chan string, 8)}
	h := startWith(t, testConfig(), Options{Camera: failingCapturer{}, UI: ui})
	h.join(t, protocol.PlayerState{ID: "bob", X: 700, Y: 500, VideoConnected: true})
	ctx := context.Background()

	require.NoError(t, h.client.Move(ctx, 700, 520, "walk"))
	h.conn.expect(t, protocol.TypeVideoConnected)
	h.conn.deliver(t, protocol.PlayerEvent{Type: protocol.TypePlayerUpdated, Player: protocol.PlayerState{ID: "me", X: 700, Y: 520, VideoConnected: true}})

	h.conn.expect(t, protocol.TypeVideoDisconnected)
	assert.Equal(t, "camera capture failed", recv(t, ui.notices))
	v, err := h.client.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, v.Conference)
}

func TestPeerSignalsRouteByIdentity(t *testing.T) {
	h := start(t, testConfig())
	h.join(t)

	h.conn.deliver(t, protocol.PeerSignal{Type: protocol.TypePeerSignal, To: "me-ss", From: "bob-ss", Kind: protocol.SignalOffer, LinkID: "l1", SDP: "v=0"})
	ss := h.ts.get(t, "me-ss")
	sig := recv(t, ss.sigs)
	assert.Equal(t, "bob-ss", sig.From)
	assert.Equal(t, "l1", sig.LinkID)

	av := h.ts.get(t, "me-av")
	require.NoError(t, av.send(protocol.PeerSignal{To: "bob-av", Kind: protocol.SignalAnswer, LinkID: "l2"}))
	raw := h.conn.expect(t, protocol.TypePeerSignal)
	var out protocol.PeerSignal
	require.NoError(t, protocol.Decode(raw, &out))
	assert.Equal(t, "me-av", out.From)
	assert.Equal(t, "bob-av", out.To)
}

func TestRunEndsWhenConnectionDrops(t *testing.T) {
	conn := newFakeConn()
	c := New(testConfig(), Options{Transports: (&transports{all: make(map[string]*fakeTransport)}).factory})
	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background(), conn) }()

	conn.expect(t, protocol.TypeJoin)
	close(conn.in)
	assert.ErrorIs(t, recv(t, done), ErrDisconnected)
	assert.ErrorIs(t, c.Exec(context.Background(), func() error { return nil }), ErrStopped)
}

func TestLeaveSentOnCancel(t *testing.T) {
	h := start(t, testConfig())
	h.join(t)
	h.cancel()
	h.conn.expect(t, protocol.TypeLeave)
}
