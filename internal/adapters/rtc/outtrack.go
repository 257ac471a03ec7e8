package rtc

import (
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

type TrackState int32

const (
	TrackStateMuted TrackState = iota
	TrackStateOk
	TrackStateDelete
)

func (s TrackState) String() string {
	switch s {
	case TrackStateMuted:
		return "muted"
	case TrackStateOk:
		return "ok"
	case TrackStateDelete:
		return "delete"
	}
	return "unknown"
}

// OutTrack is the copy of a local stream sent on one link. It starts muted
// and opens once the link is connected.
type OutTrack struct {
	LinkID string
	Track  *webrtc.TrackLocalStaticRTP
	state  atomic.Int32
}

func NewOutTrack(linkID string, track *webrtc.TrackLocalStaticRTP) *OutTrack {
	return &OutTrack{LinkID: linkID, Track: track}
}

func (ot *OutTrack) State() TrackState {
	return TrackState(ot.state.Load())
}

// MarkOk opens a muted track. A deleted track stays deleted.
func (ot *OutTrack) MarkOk() {
	ot.state.CompareAndSwap(int32(TrackStateMuted), int32(TrackStateOk))
}

func (ot *OutTrack) MarkDelete() {
	ot.state.Store(int32(TrackStateDelete))
}

// Forward writes pkt if the track is open. It reports false once the track
// is deleted, including when the write itself fails.
func (ot *OutTrack) Forward(pkt *rtp.Packet) (bool, error) {
	switch ot.State() {
	case TrackStateDelete:
		return false, nil
	case TrackStateMuted:
		return true, nil
	}
	if err := ot.Track.WriteRTP(pkt); err != nil {
		ot.MarkDelete()
		return false, err
	}
	return true, nil
}
