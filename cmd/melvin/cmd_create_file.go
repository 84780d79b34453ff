package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Jak3Gil/Melvin-o8-sub000/internal/engine"
	"github.com/spf13/cobra"
)

func newCreateFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-file",
		Short: "Create a new, empty brain file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("brain-file")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("brain file %s already exists", path)
			}

			e := engine.New(nil)
			if err := e.SaveToFile(path, uint64(time.Now().Unix())); err != nil {
				return fmt.Errorf("creating brain file: %w", err)
			}
			fmt.Printf("created %s\n", path)
			return nil
		},
	}
}
