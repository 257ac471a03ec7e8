// Package cli is the office command line client.
package cli

import (
	"os"
	"time"

	"github.com/dkeye/Office/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "office",
	Short: "Virtual office client with proximity video and seat screen sharing",
	Long: `office joins a virtual office room. Walk close to others to open a video
conference, sit at a seat to share your screen, and ask hosts for view or
control access to theirs.

Media is read as VP8 RTP from local UDP ports, for example:
  ffmpeg -f x11grab -i :0 -c:v libvpx -f rtp rtp://127.0.0.1:5004`,
	PersistentPreRun: func(*cobra.Command, []string) { setupLogging() },
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.String("server", "", "signal websocket url")
	fs.String("name", "", "display name")
	fs.StringSlice("stun", nil, "STUN server urls")
	fs.String("log-level", "", "log level")

	rootCmd.AddCommand(joinCmd, roomsCmd)
}

// Execute runs the root command.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// loadConfig reads the client config with the flags of cmd on top and
// configures logging from it.
func loadConfig(cmd *cobra.Command) (*config.Client, error) {
	fs := pflag.NewFlagSet("office", pflag.ContinueOnError)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			fs.AddFlag(f)
		}
	})
	cfg, err := config.LoadClient(fs)
	if err != nil {
		return nil, err
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return cfg, nil
}

func setupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}
