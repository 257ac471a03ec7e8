package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dkeye/Office/internal/client"
	"github.com/dkeye/Office/internal/core"
)

var (
	Primary = lipgloss.Color("#22d3ee")
	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Muted   = lipgloss.Color("#6B7280")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(Primary).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	noticeStyle  = lipgloss.NewStyle().Foreground(Warning)
	errorStyle   = lipgloss.NewStyle().Foreground(Error).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(Success)
)

func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// renderView prints the players and seats of a client view.
func renderView(w io.Writer, v client.View) {
	conf := mutedStyle.Render("off")
	if v.Conference {
		conf = successStyle.Render("on") + " " + joinIDs(v.Peers)
	}
	fmt.Fprintf(w, "room %s as %s, conference %s\n", v.Room, v.Self, conf)

	players := newTable("Player", "Name", "Position", "Video")
	for _, p := range v.Players {
		video := ""
		if p.VideoConnected {
			video = "yes"
		}
		players.Row(string(p.ID), p.Name, fmt.Sprintf("%.0f,%.0f", p.X, p.Y), video)
	}
	fmt.Fprintln(w, players.Render())

	seats := newTable("Seat", "Host", "Users", "State", "Requests")
	for _, s := range v.Seats {
		reqs := make([]string, 0, len(s.Requests))
		for uid, t := range s.Requests {
			reqs = append(reqs, string(uid)+":"+string(t))
		}
		seats.Row(string(s.ID), string(s.Host), joinIDs(s.Users), s.State.String(), strings.Join(reqs, " "))
	}
	fmt.Fprintln(w, seats.Render())
}

func renderRooms(w io.Writer, rooms []core.RoomInfo) {
	if len(rooms) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no rooms"))
		return
	}
	t := newTable("ID", "Name", "Public", "Members")
	for _, r := range rooms {
		public := ""
		if r.Public {
			public = "yes"
		}
		t.Row(string(r.ID), string(r.Name), public, fmt.Sprint(r.MemberCount))
	}
	fmt.Fprintln(w, t.Render())
}

func joinIDs[T ~string](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
