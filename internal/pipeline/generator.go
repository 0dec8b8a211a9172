package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell/internal/blueprint"
	"github.com/inkwell-ai/inkwell/internal/characters"
	"github.com/inkwell-ai/inkwell/internal/foreshadow"
	"github.com/inkwell-ai/inkwell/internal/planner"
	"github.com/inkwell-ai/inkwell/internal/prompts"
)

// BlueprintParams seeds chunked chapter-blueprint generation.
type BlueprintParams struct {
	TotalChapters      int
	ChaptersToGenerate int  // chapter budget for this invocation; 0 means up to TotalChapters
	SingleBatch        bool // stop after one chunk, for stepwise runs
	UserGuidance       string
}

// GenerateBlueprints extends the chapter directory in volume-bounded chunks.
// Each cycle determines the next batch from what is already on disk, runs one
// model call, appends the result, then merges its foreshadowing mentions into
// the tracker. The append happens before the tracker update and before the
// next call, so a crash loses at most one unmerged chunk, which the next run
// re-scans.
func (p *Pipeline) GenerateBlueprints(ctx context.Context, params BlueprintParams) error {
	if params.TotalChapters <= 0 {
		return fmt.Errorf("total chapters must be positive, got %d", params.TotalChapters)
	}

	architecture := p.readFileOrEmpty(p.project.ArchitecturePath())
	if architecture == "" {
		return fmt.Errorf("no architecture document; run architecture generation first")
	}
	outline := p.readFileOrEmpty(p.project.VolumeOutlinePath())
	ranges := planner.ParseVolumeRanges(outline, p.logger)
	planner.CheckContiguity(ranges, p.logger)

	chunkSize := planner.ComputeChunkSize(params.TotalChapters, p.gen.MaxOutputTokens)

	directoryText := p.readFileOrEmpty(p.project.DirectoryPath())
	initialLast := blueprint.Parse(directoryText, p.logger).LastChapter()

	budget := params.ChaptersToGenerate
	if budget <= 0 {
		budget = params.TotalChapters - initialLast
	}

	for {
		directoryText = p.readFileOrEmpty(p.project.DirectoryPath())
		dir := blueprint.Parse(directoryText, p.logger)
		last := dir.LastChapter()

		remaining := budget - (last - initialLast)
		if params.TotalChapters-last < remaining {
			remaining = params.TotalChapters - last
		}
		if remaining <= 0 {
			p.logger.Info("blueprint generation complete", "last_chapter", last)
			return nil
		}

		batch, ok, err := planner.NextBatch(last, ranges, chunkSize, remaining)
		if err != nil {
			return err
		}
		if !ok {
			p.logger.Info("no further batch to generate", "last_chapter", last)
			return nil
		}

		if err := p.generateChunk(ctx, batch, params, architecture, outline, ranges, dir, directoryText); err != nil {
			return err
		}

		if params.SingleBatch {
			return nil
		}
	}
}

// generateChunk runs one model call for one batch and persists the result.
func (p *Pipeline) generateChunk(ctx context.Context, batch planner.Batch, params BlueprintParams, architecture, outline string, ranges []planner.VolumeRange, dir *blueprint.Directory, directoryText string) error {
	entries := p.foreshadow.Load()

	recent := p.budget.TrimHead(dir.Tail(p.gen.RecentBlueprintEntries), p.gen.PromptTokenBudget)

	stepName := fmt.Sprintf("章节目录 第%d-%d章", batch.StartChapter, batch.EndChapter)
	text, err := p.runStep(ctx, stepName, prompts.KeyBlueprintChunk, map[string]any{
		"StartChapter":         batch.StartChapter,
		"EndChapter":           batch.EndChapter,
		"Volume":               batch.Volume,
		"Architecture":         architecture,
		"VolumeOutline":        volumeSection(outline, batch.Volume, ranges),
		"RecentBlueprints":     recent,
		"UnresolvedForeshadow": foreshadow.UnresolvedWithHistory(entries, dir.MentionLine),
		"MaxForeshadowIDs":     foreshadow.MaxIDsText(entries, directoryText),
		"CharacterIndex":       p.characterContext(),
		"UserGuidance":         params.UserGuidance,
	})
	if err != nil {
		return err
	}

	// Refuse output with no parseable chapter blocks; appending it would
	// wedge resumption at the same start chapter forever.
	if len(blueprint.Parse(text, p.logger).Entries()) == 0 {
		return fmt.Errorf("batch %d-%d contained no chapter blocks", batch.StartChapter, batch.EndChapter)
	}

	if err := appendDocument(p.project.DirectoryPath(), text); err != nil {
		return err
	}
	p.sink.Line(fmt.Sprintf("第%d-%d章目录已保存", batch.StartChapter, batch.EndChapter))

	if !p.foreshadow.ApplyBlueprint(text) {
		return fmt.Errorf("failed to persist foreshadowing updates for batch %d-%d", batch.StartChapter, batch.EndChapter)
	}
	return nil
}

// characterContext renders the bounded cast injected into blueprint prompts:
// the index table over characters passing the weight and recency filters.
func (p *Pipeline) characterContext() string {
	records := p.characters.Load()
	if len(records) == 0 {
		return "（尚无角色记录）"
	}
	filtered := characters.FilterByWeightAndRecency(records, p.gen.CharacterWeightMin, p.gen.CharacterRecencyWindow)
	subset := make(map[string]*characters.Record, len(filtered))
	for _, r := range filtered {
		subset[r.ID] = r
	}
	return characters.BuildIndexTable(subset)
}

// volumeSection extracts one volume's block from the outline document, or
// returns the whole outline when the volume has no block (the assumed
// next-volume case).
func volumeSection(outline string, volume int, ranges []planner.VolumeRange) string {
	if _, ok := planner.RangeForVolume(volume, ranges); !ok {
		return outline
	}

	var current []string
	inVolume := false
	for _, line := range strings.Split(outline, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#===") {
			if inVolume {
				break
			}
			header := planner.ParseVolumeRanges(line, nil)
			inVolume = len(header) == 1 && header[0].Volume == volume
		}
		if inVolume {
			current = append(current, line)
		}
	}
	if len(current) == 0 {
		return outline
	}
	return strings.TrimSpace(strings.Join(current, "\n"))
}
