package rtc

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutTrackStates(t *testing.T) {
	s := NewLocalStream("screen", nil)
	ot, err := s.Attach("l1")
	require.NoError(t, err)
	assert.Equal(t, TrackStateMuted, ot.State())
	assert.Equal(t, "l1", ot.LinkID)

	ot.MarkOk()
	assert.Equal(t, TrackStateOk, ot.State())

	ot.MarkDelete()
	ot.MarkOk()
	assert.Equal(t, TrackStateDelete, ot.State())
	assert.Equal(t, "delete", ot.State().String())

	alive, err := ot.Forward(&rtp.Packet{})
	assert.NoError(t, err)
	assert.False(t, alive)
}

func TestLocalStreamDropsDetachedLinks(t *testing.T) {
	s := NewLocalStream("screen", nil)
	a, err := s.Attach("a")
	require.NoError(t, err)
	_, err = s.Attach("b")
	require.NoError(t, err)
	a.MarkOk()

	pkt := &rtp.Packet{Header: rtp.Header{Version: 2, PayloadType: 96, SequenceNumber: 1}, Payload: []byte{1, 2, 3}}
	s.WriteRTP(pkt)
	assert.Equal(t, 2, s.Links())

	s.Detach("a")
	s.WriteRTP(pkt)
	assert.Equal(t, 1, s.Links())
}

func TestLocalStreamReattachReplacesTrack(t *testing.T) {
	s := NewLocalStream("camera", nil)
	first, err := s.Attach("l")
	require.NoError(t, err)
	second, err := s.Attach("l")
	require.NoError(t, err)

	assert.Equal(t, TrackStateDelete, first.State())
	assert.Equal(t, TrackStateMuted, second.State())
	assert.Equal(t, 1, s.Links())
}

func TestLocalStreamCloseReleasesOnce(t *testing.T) {
	released := 0
	s := NewLocalStream("screen", func() { released++ })
	ot, err := s.Attach("l")
	require.NoError(t, err)

	s.Close()
	s.Close()
	assert.Equal(t, 1, released)
	assert.Equal(t, TrackStateDelete, ot.State())

	_, err = s.Attach("m")
	assert.ErrorIs(t, err, ErrStreamClosed)
}
