// Command rkinit is PID 1 for a single-purpose embedded appliance: it
// prepares mounts, launches and supervises every executable under /bin,
// multiplexes their output to capped log files, and responds to the two
// reserved administrative signals by shutting everything down and asking
// the kernel to reboot or power off.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rkinit/internal/buildinfo"
	"rkinit/internal/console"
	"rkinit/internal/orchestrator"
	"rkinit/pkg/rklog"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "rkinit",
	Short:   "Minimal PID-1 init for a single-purpose appliance",
	Version: buildinfo.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		orchestrator.Run(console.Default)
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"rkinit version %s\nCommit: %s\nBuilt: %s\n",
		buildinfo.Version, buildinfo.Commit, buildinfo.BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Internal diagnostic log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit internal diagnostic logs as JSON instead of console format")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")

	rklog.Init(rklog.Config{
		Level:      rklog.Level(level),
		JSONOutput: jsonOut,
	})
}
