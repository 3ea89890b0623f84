package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/motionlink/go-rtde/motion"
)

// confirmFunc builds the pre-run confirmation callback. With yes set the
// prompt is skipped entirely. Without a terminal on stdin the run is refused:
// a robot must never start moving because a script forgot --yes.
func confirmFunc(yes bool) motion.ConfirmFunc {
	return func(ctx context.Context) (bool, error) {
		if yes {
			return true, nil
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return false, fmt.Errorf("stdin is not a terminal; pass --yes to confirm non-interactively")
		}

		fmt.Println("WARNING: the robot arm will move.")
		fmt.Println("Make sure the workspace is clear and the emergency stop is within reach.")
		fmt.Print("Type YES to continue: ")

		line := make(chan string, 1)
		go func() {
			text, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			line <- text
		}()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case text := <-line:
			return strings.TrimSpace(text) == "YES", nil
		}
	}
}
