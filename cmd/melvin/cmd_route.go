package main

import (
	"fmt"
	"strconv"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/portmgr"
	"github.com/spf13/cobra"
)

func newRouteCmd() *cobra.Command {
	var routingFile string

	cmd := &cobra.Command{
		Use:   "route <in_port> <out_port>",
		Short: "Configure the port manager to route an input port's output to an output port",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := strconv.Atoi(args[0])
			if err != nil || in < 0 || in > 255 {
				return fmt.Errorf("invalid in_port: %s (must be 0-255)", args[0])
			}
			out, err := strconv.Atoi(args[1])
			if err != nil || out < 0 || out > 255 {
				return fmt.Errorf("invalid out_port: %s (must be 0-255)", args[1])
			}

			tbl, err := portmgr.Load(routingFile)
			if err != nil {
				tbl = portmgr.New()
			}
			tbl.SetRoute(byte(in), byte(out))

			if err := tbl.Save(routingFile); err != nil {
				return fmt.Errorf("saving routing file: %w", err)
			}
			fmt.Printf("routed port %d -> port %d\n", in, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&routingFile, "routing-file", "melvin-routes.yaml", "path to the port routing YAML file")
	return cmd
}
