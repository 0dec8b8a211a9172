package main

import (
	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/pipeline"
)

var archParams pipeline.ArchitectureParams

var architectureCmd = &cobra.Command{
	Use:   "architecture",
	Short: "Generate the novel architecture document",
	Long: `Run the staged architecture chain: core seed, character dynamics, world
building, plot architecture, and final assembly into Novel_architecture.txt.

Progress is checkpointed after every stage; re-running resumes at the first
incomplete stage.

Examples:
  inkwell architecture --topic "修真归来" --genre 玄幻 --chapters 120 --words 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		return a.pipeline.GenerateArchitecture(cmd.Context(), archParams)
	},
}

func init() {
	architectureCmd.Flags().StringVar(&archParams.Topic, "topic", "", "novel topic or premise")
	architectureCmd.Flags().StringVar(&archParams.Genre, "genre", "", "novel genre")
	architectureCmd.Flags().IntVar(&archParams.TotalChapters, "chapters", 0, "planned total chapter count")
	architectureCmd.Flags().IntVar(&archParams.WordCount, "words", 3000, "target words per chapter")
	architectureCmd.Flags().StringVar(&archParams.UserGuidance, "guidance", "", "extra author guidance")
	architectureCmd.MarkFlagRequired("topic")
	architectureCmd.MarkFlagRequired("chapters")

	rootCmd.AddCommand(architectureCmd)
}
