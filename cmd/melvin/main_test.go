package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{Use: "melvin"}
	rootCmd.PersistentFlags().String("brain-file", "melvin.brain", "path to the brain file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")
	rootCmd.PersistentFlags().Bool("json", false, "output as JSON")
	return rootCmd
}

func TestCreateFileThenOpenFile_RoundTrips(t *testing.T) {
	brainPath := filepath.Join(t.TempDir(), "test.brain")

	root := newTestRootCmd()
	root.AddCommand(newCreateFileCmd())
	root.SetArgs([]string{"create-file", "--brain-file", brainPath})
	var out bytes.Buffer
	root.SetOut(&out)
	require.NoError(t, root.Execute(), "create-file failed")

	root2 := newTestRootCmd()
	root2.AddCommand(newOpenFileCmd())
	root2.SetArgs([]string{"open-file", "--brain-file", brainPath})
	root2.SetOut(&out)
	require.NoError(t, root2.Execute(), "open-file failed")
}

func TestCreateFile_RefusesToOverwriteExisting(t *testing.T) {
	brainPath := filepath.Join(t.TempDir(), "test.brain")

	root := newTestRootCmd()
	root.AddCommand(newCreateFileCmd())
	root.SetArgs([]string{"create-file", "--brain-file", brainPath})
	require.NoError(t, root.Execute(), "first create-file failed")

	root2 := newTestRootCmd()
	root2.AddCommand(newCreateFileCmd())
	root2.SetArgs([]string{"create-file", "--brain-file", brainPath})
	assert.Error(t, root2.Execute(), "expected the second create-file call to refuse to overwrite an existing brain file")
}

func TestProcessBytes_FeedsInputAndSaves(t *testing.T) {
	brainPath := filepath.Join(t.TempDir(), "test.brain")

	root := newTestRootCmd()
	root.AddCommand(newCreateFileCmd())
	root.SetArgs([]string{"create-file", "--brain-file", brainPath})
	require.NoError(t, root.Execute(), "create-file failed")

	root2 := newTestRootCmd()
	root2.AddCommand(newProcessBytesCmd())
	root2.SetArgs([]string{"process-bytes", "--brain-file", brainPath, "--port", "1", "hello"})
	require.NoError(t, root2.Execute(), "process-bytes failed")

	root3 := newTestRootCmd()
	root3.AddCommand(newDumpStatsCmd())
	root3.SetArgs([]string{"dump-stats", "--brain-file", brainPath})
	require.NoError(t, root3.Execute(), "dump-stats failed")
}

func TestProcessBytes_HonorsSeedEnvOverride(t *testing.T) {
	t.Setenv("MELVIN_SEED", "99")
	brainPath := filepath.Join(t.TempDir(), "test.brain")

	root := newTestRootCmd()
	root.AddCommand(newCreateFileCmd())
	root.SetArgs([]string{"create-file", "--brain-file", brainPath})
	require.NoError(t, root.Execute(), "create-file failed")

	root2 := newTestRootCmd()
	root2.AddCommand(newProcessBytesCmd())
	root2.SetArgs([]string{"process-bytes", "--brain-file", brainPath, "--port", "1", "hello"})
	assert.NoError(t, root2.Execute(), "process-bytes failed with a seed override set")
}

func TestRoute_RejectsOutOfRangePort(t *testing.T) {
	routingPath := filepath.Join(t.TempDir(), "routes.yaml")

	root := newTestRootCmd()
	root.AddCommand(newRouteCmd())
	root.SetArgs([]string{"route", "--routing-file", routingPath, "300", "1"})
	assert.Error(t, root.Execute(), "expected an error for an out-of-range port")
}
