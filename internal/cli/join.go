package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dkeye/Office/internal/adapters/rtc"
	"github.com/dkeye/Office/internal/client"
	"github.com/dkeye/Office/internal/protocol"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var joinCmd = &cobra.Command{
	Use:   "join [room]",
	Short: "Join a room and take commands from stdin",
	Long: `Join a room and take commands from stdin. Without a room argument the
configured room, "public" by default, is joined.

Examples:
  office join
  office join 3f2c9a --name ann --auto-approve
  office join --screen-rtp 127.0.0.1:6004`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			cfg.Room = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		conn, err := client.Dial(ctx, cfg.ServerURL, nil)
		if err != nil {
			return err
		}

		ice := rtc.ICEConfig(cfg.STUN)
		c := client.New(cfg, client.Options{
			Transports: func(localID string, send func(protocol.PeerSignal) error) client.SignalTransport {
				return rtc.NewTransport(localID, ice, send)
			},
			Screen: rtc.UDPCapturer{Addr: cfg.ScreenRTP, StreamID: "screen"},
			Camera: rtc.UDPCapturer{Addr: cfg.CameraRTP, StreamID: "camera"},
			Hooks:  newMediaLog(),
		})

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- c.Run(runCtx, conn) }()

		r := &repl{office: c, out: cmd.OutOrStdout()}
		fmt.Fprintln(r.out, mutedStyle.Render("type help for commands"))
		replDone := make(chan error, 1)
		go func() { replDone <- r.run(runCtx, cmd.InOrStdin()) }()

		select {
		case err = <-done:
		case <-replDone:
			cancel()
			err = <-done
		}
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		log.Info().Str("module", "cli").Msg("left the office")
		return err
	},
}

func init() {
	fs := joinCmd.Flags()
	fs.String("room", "", "room id")
	fs.String("screen-rtp", "", "local UDP address fed with screen RTP")
	fs.String("camera-rtp", "", "local UDP address fed with camera RTP")
	fs.Bool("auto-approve", false, "grant every access request as asked")
}
