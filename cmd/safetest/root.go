package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/motionlink/go-rtde/logger"
)

var rootCmd = &cobra.Command{
	Use:   "safetest",
	Short: "safetest drives a safety-bounded incremental motion test against a robot controller",
	Long: `safetest connects to a robot controller's real-time data exchange interface,
commands a minimal incremental joint movement, waits for the arm to settle,
and returns it to the start position. Every commanded target is validated
against a configured safety envelope before dispatch, and the session is
always paused and disconnected on exit, whatever terminated the run.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger.GetLogger().SetLevel(logger.DebugLevel)
		}
	},
}

// exitStatus is set by subcommands whose result is more nuanced than ok/error,
// e.g. the run command's outcome-based exit codes. main exits with it after
// all deferred cleanup has run.
var exitStatus int

// Execute adds all child commands to the root command and returns the process
// exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		return 1
	}

	return exitStatus
}

func init() {
	rootCmd.PersistentFlags().String("host", "127.0.0.1", "Controller host or IP address")
	rootCmd.PersistentFlags().Int("port", 30004, "Controller RTDE port")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Skip the interactive confirmation prompt")
}
