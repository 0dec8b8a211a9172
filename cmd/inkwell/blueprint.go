package main

import (
	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/pipeline"
)

var blueprintParams pipeline.BlueprintParams

var blueprintCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Generate chapter blueprints in chunks",
	Long: `Extend Novel_directory.txt in volume-bounded chunks. Each chunk is
appended and its foreshadowing mentions merged before the next model call,
so an interrupted run resumes at the first missing chapter.

Examples:
  inkwell blueprint --chapters 120              # generate everything remaining
  inkwell blueprint --chapters 120 --count 30   # at most 30 more chapters
  inkwell blueprint --chapters 120 --single     # exactly one chunk`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		return a.pipeline.GenerateBlueprints(cmd.Context(), blueprintParams)
	},
}

func init() {
	blueprintCmd.Flags().IntVar(&blueprintParams.TotalChapters, "chapters", 0, "planned total chapter count")
	blueprintCmd.Flags().IntVar(&blueprintParams.ChaptersToGenerate, "count", 0, "chapter budget for this run (default: all remaining)")
	blueprintCmd.Flags().BoolVar(&blueprintParams.SingleBatch, "single", false, "stop after one chunk")
	blueprintCmd.Flags().StringVar(&blueprintParams.UserGuidance, "guidance", "", "extra author guidance")
	blueprintCmd.MarkFlagRequired("chapters")

	rootCmd.AddCommand(blueprintCmd)
}
