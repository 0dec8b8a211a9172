package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/inkwell-ai/inkwell/internal/blueprint"
	"github.com/inkwell-ai/inkwell/internal/characters"
	"github.com/inkwell-ai/inkwell/internal/prompts"
)

// FinalizeChapter folds a written chapter back into the project state: a
// chapter summary, character record updates, a re-scan of the chapter's
// blueprint foreshadowing block, and the rolling global summary. Steps run in
// that order and each persists before the next, so a failed finalization can
// simply be re-run; every merge involved is idempotent.
func (p *Pipeline) FinalizeChapter(ctx context.Context, chapter int) error {
	if chapter <= 0 {
		return fmt.Errorf("chapter must be positive, got %d", chapter)
	}

	data, err := os.ReadFile(p.project.ChapterPath(chapter))
	if err != nil {
		return fmt.Errorf("failed to read chapter %d prose: %w", chapter, err)
	}
	chapterText := string(data)

	summary, err := p.runStep(ctx, fmt.Sprintf("第%d章摘要", chapter), prompts.KeyChapterSummary, map[string]any{
		"Chapter":     chapter,
		"ChapterText": chapterText,
	})
	if err != nil {
		return err
	}

	if err := p.updateCharacters(ctx, chapter, chapterText); err != nil {
		return err
	}

	p.rescanForeshadowing(chapter)

	if err := p.updateGlobalSummary(ctx, chapter, summary); err != nil {
		return err
	}

	p.sink.Line(fmt.Sprintf("第%d章定稿完成", chapter))
	p.logger.Info("chapter finalized", "chapter", chapter)
	return nil
}

func (p *Pipeline) updateCharacters(ctx context.Context, chapter int, chapterText string) error {
	update, err := p.runStep(ctx, fmt.Sprintf("第%d章角色更新", chapter), prompts.KeyCharacterUpdate, map[string]any{
		"Chapter":        chapter,
		"ChapterText":    chapterText,
		"CharacterIndex": characters.BuildIndexTable(p.characters.Load()),
	})
	if err != nil {
		return err
	}
	if !p.characters.ApplyUpdate(update) {
		return fmt.Errorf("failed to persist character updates for chapter %d", chapter)
	}
	return nil
}

// rescanForeshadowing re-merges the chapter's blueprint foreshadowing block.
// State deduplication makes this a no-op when the chunk generation already
// merged it; it exists to repair runs that crashed between the directory
// append and the tracker update.
func (p *Pipeline) rescanForeshadowing(chapter int) {
	dir := blueprint.Parse(p.readFileOrEmpty(p.project.DirectoryPath()), p.logger)
	entry, ok := dir.Entry(chapter)
	if !ok {
		p.logger.Warn("no blueprint entry to rescan", "chapter", chapter)
		return
	}
	if !p.foreshadow.ApplyBlueprint(entry.Raw) {
		p.logger.Warn("failed to persist foreshadowing rescan", "chapter", chapter)
	}
}

func (p *Pipeline) updateGlobalSummary(ctx context.Context, chapter int, chapterSummary string) error {
	updated, err := p.runStep(ctx, fmt.Sprintf("第%d章全局摘要", chapter), prompts.KeyGlobalSummary, map[string]any{
		"Chapter":        chapter,
		"ChapterSummary": chapterSummary,
		"GlobalSummary":  p.readFileOrEmpty(p.project.GlobalSummaryPath()),
	})
	if err != nil {
		return err
	}
	return writeDocument(p.project.GlobalSummaryPath(), updated)
}
