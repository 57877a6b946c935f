package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash-cli/internal/health"
)

var (
	healthWatch    bool
	healthInterval time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the analysis backend is online",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		client := newBackendClient(c)
		out := cmd.OutOrStdout()

		if !healthWatch {
			mon := newMonitor(client, c)
			state := mon.ProbeNow(cmd.Context())
			_, _, err := mon.Snapshot()
			printState(out, client.BaseURL(), state, err)
			if state != health.StateOnline {
				return fmt.Errorf("backend at %s is %s", client.BaseURL(), state)
			}
			return nil
		}

		opts := []health.Option{health.WithListener(func(state health.State, err error) {
			printState(out, client.BaseURL(), state, err)
		})}
		if healthInterval > 0 {
			opts = append(opts, health.WithInterval(healthInterval))
		}
		mon := newMonitor(client, c, opts...)
		mon.Start(cmd.Context())
		<-cmd.Context().Done()
		mon.Stop()
		return nil
	},
}

func printState(w io.Writer, url string, state health.State, err error) {
	switch {
	case state == health.StateOnline:
		printOK(w, "Backend online at %s", url)
	case err != nil:
		printErr(w, "Backend %s at %s: %v", state, url, err)
	default:
		printErr(w, "Backend %s at %s", state, url)
	}
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVarP(&healthWatch, "watch", "w", false, "keep probing until interrupted")
	healthCmd.Flags().DurationVar(&healthInterval, "interval", 0, "probe interval in watch mode (overrides config)")
}
