package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize <chapter>",
	Short: "Fold a written chapter back into project state",
	Long: `Finalize one chapter: generate its summary, merge character state updates,
re-scan its blueprint foreshadowing block, and roll the global summary
forward. The chapter's prose must exist at chapters/chapter_<n>.txt.

All merges are idempotent; a failed finalization can be re-run.

Examples:
  inkwell finalize 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("chapter must be a number: %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		return a.pipeline.FinalizeChapter(cmd.Context(), chapter)
	},
}

func init() {
	rootCmd.AddCommand(finalizeCmd)
}
