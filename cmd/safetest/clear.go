package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/motionlink/go-rtde/logger"
	"github.com/motionlink/go-rtde/rtde"
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear a stale controller session",
	Long: `Connects to the controller, pauses any active synchronization, disconnects,
and waits for the controller to release its input registers. Run this when a
previous session crashed without tearing down and new sessions keep failing
with register conflicts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		transport, _ := cmd.Flags().GetString("transport")
		grace, _ := cmd.Flags().GetDuration("grace")

		client, err := newClient(transport, 0)
		if err != nil {
			return err
		}

		cfg, err := rtde.NewSessionConfig(host, port)
		if err != nil {
			return err
		}

		session, err := rtde.NewSession(cfg, client)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logger.GetLogger().With("endpoint", cfg.Endpoint())
		log.Info("clearing stale session")

		if err := session.Open(ctx); err != nil {
			session.Close()
			return err
		}

		// Close pauses synchronization and disconnects; the controller releases
		// the input registers on its own timer after the disconnect.
		session.Close()

		log.Info("waiting for register release", "grace", grace)
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		log.Info("stale session cleared")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().String("transport", "sim", "Transport to use (only \"sim\" is bundled)")
	clearCmd.Flags().Duration("grace", 2*time.Second, "Time to wait for the controller to release registers")
}
