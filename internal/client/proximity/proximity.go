// Package proximity decides when the local player joins or leaves the ad
// hoc conference around it.
package proximity

import "github.com/dkeye/Office/internal/domain"

type Config struct {
	ConnectDistance    float64
	DisconnectDistance float64
	Zone               domain.Zone
}

func DefaultConfig() Config {
	return Config{
		ConnectDistance:    80,
		DisconnectDistance: 120,
		Zone:               domain.Zone{XMin: 655, XMax: 845, YMin: 460, YMax: 640},
	}
}

type Decision int

const (
	None Decision = iota
	Connect
	Disconnect
)

func (d Decision) String() string {
	switch d {
	case Connect:
		return "connect"
	case Disconnect:
		return "disconnect"
	default:
		return "none"
	}
}

type Input struct {
	Self      domain.Point
	Others    []domain.Point
	Connected bool
}

// Evaluate compares one tick of positions against the thresholds. A player
// connects inside the zone or closer than ConnectDistance to anyone, and
// disconnects only outside the zone with nobody within DisconnectDistance.
func Evaluate(cfg Config, in Input) Decision {
	inZone := cfg.Zone.Contains(in.Self)
	if !in.Connected {
		if inZone {
			return Connect
		}
		for _, o := range in.Others {
			if in.Self.Distance(o) < cfg.ConnectDistance {
				return Connect
			}
		}
		return None
	}

	if inZone {
		return None
	}
	for _, o := range in.Others {
		if in.Self.Distance(o) <= cfg.DisconnectDistance {
			return None
		}
	}
	return Disconnect
}
