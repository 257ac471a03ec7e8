package domain

import "math"

// Player is a user's avatar inside a room.
type Player struct {
	ID   UserID
	Name string

	X, Y float64
	Anim string

	ReadyToConnect bool
	VideoConnected bool
}

func NewPlayer(u User) *Player {
	return &Player{ID: u.ID, Name: u.Username}
}

func (p *Player) Position() Point { return Point{p.X, p.Y} }

type Point struct {
	X, Y float64
}

func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Zone is an axis-aligned rectangle, bounds inclusive.
type Zone struct {
	XMin float64 `mapstructure:"x_min" json:"xMin"`
	XMax float64 `mapstructure:"x_max" json:"xMax"`
	YMin float64 `mapstructure:"y_min" json:"yMin"`
	YMax float64 `mapstructure:"y_max" json:"yMax"`
}

func (z Zone) Contains(p Point) bool {
	return p.X >= z.XMin && p.X <= z.XMax && p.Y >= z.YMin && p.Y <= z.YMax
}
