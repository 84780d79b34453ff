package main

import (
	"fmt"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/engine"
	"github.com/spf13/cobra"
)

func newDumpStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-stats",
		Short: "Print node/edge counts and basic local statistics for a brain file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("brain-file")
			e, err := engine.OpenFromFile(path, nil)
			if err != nil {
				return fmt.Errorf("opening brain file: %w", err)
			}

			g := e.Graph()
			fmt.Printf("nodes: %d\n", g.NodeCount())
			fmt.Printf("edges: %d\n", g.EdgeCount())
			fmt.Printf("adaptation_count: %d\n", e.AdaptationCount())

			var blankCount, hierarchyCount int
			var weightSum float64
			for i := 0; i < g.NodeCount(); i++ {
				n := g.NodeByIndex(i)
				if n.IsBlank() {
					blankCount++
				}
				if n.AbstractionLevel > 0 {
					hierarchyCount++
				}
				weightSum += n.Weight
			}
			fmt.Printf("blank nodes: %d\n", blankCount)
			fmt.Printf("hierarchy nodes: %d\n", hierarchyCount)
			if g.NodeCount() > 0 {
				fmt.Printf("mean node weight: %f\n", weightSum/float64(g.NodeCount()))
			}
			return nil
		},
	}
}
