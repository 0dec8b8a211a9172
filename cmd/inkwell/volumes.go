package main

import (
	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/pipeline"
)

var volumeParams pipeline.VolumeParams

var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "Generate the volume outline",
	Long: `Extend Volume_outline.txt up to the requested number of volumes, one batch
per model call. Each batch is appended before the next call, so an
interrupted run resumes at the first missing volume.

Examples:
  inkwell volumes --chapters 120 --volumes 6
  inkwell volumes --chapters 120 --volumes 6 --batch 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		return a.pipeline.GenerateVolumeOutline(cmd.Context(), volumeParams)
	},
}

func init() {
	volumesCmd.Flags().IntVar(&volumeParams.TotalChapters, "chapters", 0, "planned total chapter count")
	volumesCmd.Flags().IntVar(&volumeParams.TotalVolumes, "volumes", 0, "planned total volume count")
	volumesCmd.Flags().IntVar(&volumeParams.VolumesPerBatch, "batch", 0, "volumes per model call (default 4)")
	volumesCmd.Flags().StringVar(&volumeParams.UserGuidance, "guidance", "", "extra author guidance")
	volumesCmd.MarkFlagRequired("chapters")
	volumesCmd.MarkFlagRequired("volumes")

	rootCmd.AddCommand(volumesCmd)
}
