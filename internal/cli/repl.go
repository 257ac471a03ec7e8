package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dkeye/Office/internal/client"
	"github.com/dkeye/Office/internal/domain"
	"github.com/dkeye/Office/internal/protocol"
)

var (
	errQuit  = errors.New("quit")
	errUsage = errors.New("usage")
)

// Office is the part of the client the prompt drives.
type Office interface {
	Snapshot(ctx context.Context) (client.View, error)
	Move(ctx context.Context, x, y float64, anim string) error
	Interact(ctx context.Context, id domain.SeatID) error
	Claim(ctx context.Context, id domain.SeatID) error
	StartShare(ctx context.Context, id domain.SeatID) error
	StopShare(ctx context.Context, id domain.SeatID) error
	RequestAccess(ctx context.Context, id domain.SeatID, t domain.AccessType) error
	Respond(ctx context.Context, id domain.SeatID, requester domain.UserID, approved bool, t domain.AccessType) error
	Leave(ctx context.Context, id domain.SeatID) error
	SendInput(ctx context.Context, id domain.SeatID, typ string, payload any) error
}

const helpText = `commands:
  state                       show players and seats
  move <x> <y>                walk to a position
  use <seat>                  claim a free seat or open its dialog
  claim|share|stop|leave <seat>
  request <seat> view|control ask the host for access
  approve <seat> <user> [view|control]
  deny <seat> <user>
  key <seat> <code>           press and release a key on a controlled screen
  click <seat> <x> <y>        click at a normalised position
  quit`

type repl struct {
	office Office
	out    io.Writer
}

// run reads commands until in ends, ctx is done or quit is entered.
func (r *repl) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.out, "> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := r.exec(ctx, line)
			switch {
			case errors.Is(err, errQuit):
				return nil
			case errors.Is(err, errUsage):
				fmt.Fprintln(r.out, helpText)
			case err != nil:
				fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
			}
		}
	}
}

func (r *repl) exec(ctx context.Context, line string) error {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil
	}
	cmd, args := f[0], f[1:]
	seat := func() domain.SeatID { return domain.SeatID(args[0]) }

	switch cmd {
	case "help", "?":
		return errUsage
	case "quit", "exit":
		return errQuit
	case "state":
		v, err := r.office.Snapshot(ctx)
		if err != nil {
			return err
		}
		renderView(r.out, v)
		return nil
	case "move":
		if len(args) != 2 {
			return errUsage
		}
		x, errX := strconv.ParseFloat(args[0], 64)
		y, errY := strconv.ParseFloat(args[1], 64)
		if errX != nil || errY != nil {
			return errUsage
		}
		return r.office.Move(ctx, x, y, "")
	}

	if len(args) == 0 {
		return errUsage
	}
	switch cmd {
	case "use":
		return r.office.Interact(ctx, seat())
	case "claim":
		return r.office.Claim(ctx, seat())
	case "share":
		return r.office.StartShare(ctx, seat())
	case "stop":
		return r.office.StopShare(ctx, seat())
	case "leave":
		return r.office.Leave(ctx, seat())
	case "request":
		if len(args) != 2 {
			return errUsage
		}
		t, err := domain.ParseAccessType(args[1])
		if err != nil {
			return err
		}
		return r.office.RequestAccess(ctx, seat(), t)
	case "approve", "deny":
		if len(args) < 2 || len(args) > 3 {
			return errUsage
		}
		var t domain.AccessType
		if len(args) == 3 {
			var err error
			if t, err = domain.ParseAccessType(args[2]); err != nil {
				return err
			}
		}
		return r.office.Respond(ctx, seat(), domain.UserID(args[1]), cmd == "approve", t)
	case "key":
		if len(args) != 2 {
			return errUsage
		}
		for _, down := range []bool{true, false} {
			if err := r.office.SendInput(ctx, seat(), protocol.ControlKey, protocol.KeyPayload{Code: args[1], Down: down}); err != nil {
				return err
			}
		}
		return nil
	case "click":
		if len(args) != 3 {
			return errUsage
		}
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			return errUsage
		}
		for _, buttons := range []uint8{1, 0} {
			if err := r.office.SendInput(ctx, seat(), protocol.ControlPointer, protocol.PointerPayload{X: x, Y: y, Buttons: buttons}); err != nil {
				return err
			}
		}
		return nil
	}
	return errUsage
}
