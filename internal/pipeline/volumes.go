package pipeline

import (
	"context"
	"fmt"

	"github.com/inkwell-ai/inkwell/internal/planner"
	"github.com/inkwell-ai/inkwell/internal/prompts"
)

// defaultVolumesPerBatch bounds how many volume outlines one model call
// produces. Volumes are cheap relative to chapter blueprints, so the batch is
// sized for coherence, not token pressure.
const defaultVolumesPerBatch = 4

// VolumeParams seeds volume outline generation.
type VolumeParams struct {
	TotalChapters   int
	TotalVolumes    int
	VolumesPerBatch int // defaults to defaultVolumesPerBatch
	UserGuidance    string
}

// GenerateVolumeOutline extends the volume outline document up to
// TotalVolumes, one batch of volumes per model call. Each batch is appended
// and persisted before the next call, so an interrupted run resumes at the
// first missing volume.
func (p *Pipeline) GenerateVolumeOutline(ctx context.Context, params VolumeParams) error {
	if params.TotalVolumes <= 0 {
		return fmt.Errorf("total volumes must be positive, got %d", params.TotalVolumes)
	}
	batchSize := params.VolumesPerBatch
	if batchSize <= 0 {
		batchSize = defaultVolumesPerBatch
	}

	architecture := p.readFileOrEmpty(p.project.ArchitecturePath())
	if architecture == "" {
		return fmt.Errorf("no architecture document; run architecture generation first")
	}

	for {
		existing := p.readFileOrEmpty(p.project.VolumeOutlinePath())
		ranges := planner.ParseVolumeRanges(existing, p.logger)
		planner.CheckContiguity(ranges, p.logger)

		lastVolume := 0
		for _, r := range ranges {
			if r.Volume > lastVolume {
				lastVolume = r.Volume
			}
		}
		if lastVolume >= params.TotalVolumes {
			p.logger.Info("volume outline complete", "volumes", lastVolume)
			return nil
		}

		startVolume := lastVolume + 1
		endVolume := startVolume + batchSize - 1
		if endVolume > params.TotalVolumes {
			endVolume = params.TotalVolumes
		}

		stepName := fmt.Sprintf("分卷大纲 第%d-%d卷", startVolume, endVolume)
		text, err := p.runStep(ctx, stepName, prompts.KeyVolumeOutline, map[string]any{
			"StartVolume":     startVolume,
			"EndVolume":       endVolume,
			"TotalChapters":   params.TotalChapters,
			"ExistingOutline": existing,
			"Architecture":    architecture,
			"UserGuidance":    params.UserGuidance,
		})
		if err != nil {
			return err
		}

		// Refuse output that contains no parseable volume header; appending
		// it would wedge resumption at the same start volume forever.
		if len(planner.ParseVolumeRanges(text, p.logger)) == 0 {
			return fmt.Errorf("volume outline batch %d-%d contained no volume headers", startVolume, endVolume)
		}

		if err := appendDocument(p.project.VolumeOutlinePath(), text); err != nil {
			return err
		}
		p.sink.Line(fmt.Sprintf("第%d-%d卷大纲已保存", startVolume, endVolume))
	}
}
