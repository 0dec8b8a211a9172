package blueprint

import (
	"log/slog"
	"strings"
)

// Directory is a parsed view over the chapter directory document.
type Directory struct {
	entries []Entry
	byNum   map[int]int // chapter -> index into entries
}

// Parse builds a Directory from document text.
func Parse(text string, logger *slog.Logger) *Directory {
	entries := ParseDocument(text, logger)
	byNum := make(map[int]int, len(entries))
	for i, e := range entries {
		byNum[e.Chapter] = i
	}
	return &Directory{entries: entries, byNum: byNum}
}

// Entries returns all parsed blueprint entries in document order.
func (d *Directory) Entries() []Entry {
	return d.entries
}

// Entry returns the blueprint for one chapter.
func (d *Directory) Entry(chapter int) (Entry, bool) {
	i, ok := d.byNum[chapter]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// ChapterNumbers returns the set of chapters present, in document order.
func (d *Directory) ChapterNumbers() []int {
	out := make([]int, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e.Chapter)
	}
	return out
}

// LastChapter returns the highest chapter number present, or 0.
func (d *Directory) LastChapter() int {
	last := 0
	for _, e := range d.entries {
		if e.Chapter > last {
			last = e.Chapter
		}
	}
	return last
}

// MentionLine returns the raw foreshadowing line for the given id inside one
// chapter's blueprint, or "". Used to reconstruct the history of an
// unresolved thread for prompt context.
func (d *Directory) MentionLine(chapter int, id string) string {
	e, ok := d.Entry(chapter)
	if !ok {
		return ""
	}
	for _, line := range strings.Split(e.ForeshadowBlock, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "│|- "))
		if strings.HasPrefix(line, id) {
			return line
		}
	}
	return ""
}

// Tail returns the raw text of the last n blueprint blocks, used as bounded
// recent-history context in generation prompts.
func (d *Directory) Tail(n int) string {
	if n <= 0 || len(d.entries) == 0 {
		return ""
	}
	start := len(d.entries) - n
	if start < 0 {
		start = 0
	}
	var blocks []string
	for _, e := range d.entries[start:] {
		blocks = append(blocks, e.Raw)
	}
	return strings.Join(blocks, "\n\n")
}
