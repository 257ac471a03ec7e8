package rtc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dkeye/Office/internal/client/peer"
	"github.com/pion/rtp"
	"github.com/rs/zerolog/log"
)

const maxPacketSize = 1500

// UDPCapturer reads RTP packets an external encoder sends to Addr.
type UDPCapturer struct {
	Addr string
	// StreamID names the captured stream, for example "screen".
	StreamID string
}

// Capture binds Addr and returns a stream fed from it until closed.
func (c UDPCapturer) Capture(ctx context.Context) (peer.Stream, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", c.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", c.Addr, err)
	}
	stream := NewLocalStream(c.StreamID, func() { _ = conn.Close() })
	go pump(conn, stream)
	log.Info().Str("module", "capture").Str("addr", conn.LocalAddr().String()).Str("stream", c.StreamID).Msg("capturing RTP")
	return stream, nil
}

func pump(conn net.PacketConn, stream *LocalStream) {
	buf := make([]byte, maxPacketSize)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Error().Err(err).Str("module", "capture").Str("stream", stream.ID()).Msg("read RTP error, stopping")
			}
			stream.Close()
			return
		}
		pkt := &rtp.Packet{}
		if err := pkt.Unmarshal(buf[:n]); err != nil {
			log.Debug().Err(err).Str("module", "capture").Msg("dropping non-RTP datagram")
			continue
		}
		stream.WriteRTP(pkt)
	}
}
