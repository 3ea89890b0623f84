package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/motionlink/go-rtde/logger"
	"github.com/motionlink/go-rtde/motion"
	"github.com/motionlink/go-rtde/rtde"
	"github.com/motionlink/go-rtde/rtdesim"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the incremental motion test",
	Long: `Connects to the controller, reads the current joint positions, offsets one
joint by a small delta, waits for the arm to settle, and moves back. Both
movements are validated against the safety envelope before dispatch.

Only the bundled simulator transport is available; pass --transport sim
explicitly or rely on the default. Ctrl+C aborts the run and still tears the
session down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runMotionTest(cmd)
		if err != nil {
			return err
		}

		report(res)
		exitStatus = exitCode(res)

		return nil
	},
}

// runMotionTest assembles the orchestrator from the command flags and drives
// one run. Returned errors are configuration problems; run failures are
// reported through the RunResult.
func runMotionTest(cmd *cobra.Command) (motion.RunResult, error) {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	yes, _ := cmd.Flags().GetBool("yes")
	configPath, _ := cmd.Flags().GetString("config")
	recipesPath, _ := cmd.Flags().GetString("recipes")
	joint, _ := cmd.Flags().GetInt("joint")
	offset, _ := cmd.Flags().GetFloat64("offset")
	transport, _ := cmd.Flags().GetString("transport")
	conflicts, _ := cmd.Flags().GetInt("sim-conflicts")

	envelope := motion.DefaultEnvelope()
	if configPath != "" {
		env, err := motion.LoadEnvelope(configPath)
		if err != nil {
			return motion.RunResult{}, err
		}
		envelope = env
	}

	stateRecipe := rtde.StateRecipe()
	setpointRecipe := rtde.SetpointRecipe()
	if recipesPath != "" {
		recipes, err := rtde.LoadConfig(recipesPath)
		if err != nil {
			return motion.RunResult{}, err
		}
		if stateRecipe, err = recipes.Recipe("state"); err != nil {
			return motion.RunResult{}, err
		}
		if setpointRecipe, err = recipes.Recipe("setp"); err != nil {
			return motion.RunResult{}, err
		}
	}

	client, err := newClient(transport, conflicts)
	if err != nil {
		return motion.RunResult{}, err
	}

	sessCfg, err := rtde.NewSessionConfig(host, port)
	if err != nil {
		return motion.RunResult{}, err
	}

	orch, err := motion.New(motion.Config{
		Session:        sessCfg,
		Envelope:       envelope,
		StateRecipe:    stateRecipe,
		SetpointRecipe: setpointRecipe,
		TestJoint:      joint,
		TestOffset:     offset,
		Confirm:        confirmFunc(yes),
	}, client)
	if err != nil {
		return motion.RunResult{}, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return orch.Run(ctx), nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "Safety envelope YAML file (defaults used when omitted)")
	runCmd.Flags().StringP("recipes", "r", "", "Recipe configuration XML file (built-in recipes when omitted)")
	runCmd.Flags().Int("joint", 5, "Zero-based joint index to offset")
	runCmd.Flags().Float64("offset", 0.03, "Test offset in radians")
	runCmd.Flags().String("transport", "sim", "Transport to use (only \"sim\" is bundled)")
	runCmd.Flags().Int("sim-conflicts", 0, "Simulator: reject this many configure attempts with a register conflict")
}

// newClient builds the transport client. Real controller transports implement
// rtde.Client out of tree; only the simulator ships with the command.
func newClient(transport string, conflicts int) (rtde.Client, error) {
	switch transport {
	case "sim":
		return rtdesim.New(rtdesim.Config{
			InitialQ:           rtde.JointVector{0, -1.57, 0, -1.57, 0, 0},
			ConflictRejections: conflicts,
		}), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func report(res motion.RunResult) {
	log := logger.GetLogger()

	switch res.Outcome {
	case motion.Success:
		log.Info("motion test passed")
	case motion.SafetyViolation:
		log.Error("motion test rejected by safety envelope",
			"joint", res.Joint, "delta", fmt.Sprintf("%.4f", res.Delta), "error", res.Err)
	case motion.UserCancelled:
		log.Warn("motion test cancelled")
	default:
		log.Error("motion test failed", "outcome", res.Outcome, "error", res.Err)
	}
}

func exitCode(res motion.RunResult) int {
	switch res.Outcome {
	case motion.Success:
		return 0
	case motion.UserCancelled:
		return 130
	default:
		return 1
	}
}
