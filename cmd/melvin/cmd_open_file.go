package main

import (
	"fmt"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/engine"
	"github.com/spf13/cobra"
)

func newOpenFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-file",
		Short: "Open an existing brain file and report its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("brain-file")
			e, err := engine.OpenFromFile(path, nil)
			if err != nil {
				return fmt.Errorf("opening brain file: %w", err)
			}
			g := e.Graph()
			fmt.Printf("%s: %d nodes, %d edges, adaptation_count=%d\n",
				path, g.NodeCount(), g.EdgeCount(), e.AdaptationCount())
			return nil
		},
	}
}
