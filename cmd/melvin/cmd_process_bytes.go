package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/config"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/engine"
	"github.com/Jak3Gil/Melvin-o8-sub000/internal/portframe"
	"github.com/spf13/cobra"
)

func newProcessBytesCmd() *cobra.Command {
	var portID int

	cmd := &cobra.Command{
		Use:   "process-bytes",
		Short: "Feed bytes into the engine through a port and print any emitted output",
		Long: `process-bytes reads raw data (from an argument, or from stdin if no
argument is given), wraps it in a port frame, runs it through
process_input, and auto-saves the brain file since the graph is always
marked dirty after a successful call.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("brain-file")

			var data []byte
			var err error
			if len(args) > 0 {
				data = []byte(args[0])
			} else {
				data, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
			}

			e, err := engine.OpenFromFile(path, nil)
			if err != nil {
				return fmt.Errorf("opening brain file: %w", err)
			}

			cfg, err := config.Load("")
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.Seed != nil {
				e.SetSeedOverride(*cfg.Seed)
			}

			frame := portframe.Encode(portframe.Frame{PortID: byte(portID), Timestamp: time.Now(), Data: data})
			if err := e.ProcessInput(frame); err != nil {
				return fmt.Errorf("process_input: %w", err)
			}

			if err := e.SaveToFile(path, uint64(time.Now().Unix())); err != nil {
				return fmt.Errorf("saving brain file: %w", err)
			}

			out := e.UniversalOutputRead()
			if len(out) == 0 {
				fmt.Println("(no output — still thinking)")
			} else {
				os.Stdout.Write(out)
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&portID, "port", 0, "input port id (0-255)")
	return cmd
}
