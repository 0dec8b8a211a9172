package main

import (
	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/version"
)

var (
	cfgFile    string
	homeDir    string
	projectDir string
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Stateful long-form novel generation pipeline",
	Long: `Inkwell is a generation pipeline for long serialized novels. It keeps the
narrative state of a project on disk and feeds it back into every model call.

The pipeline includes:
  - Staged novel architecture generation with resumable checkpoints
  - Chunked volume outline and chapter blueprint generation
  - Foreshadowing lifecycle tracking across chapters
  - Character state tracking with weighted context selection
  - Per-chapter finalization with rolling global summary`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.inkwell/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "inkwell home directory (default: ~/.inkwell)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&projectDir, "project", "p", ".", "novel project directory",
	)

	rootCmd.AddCommand(versionCmd)
}
