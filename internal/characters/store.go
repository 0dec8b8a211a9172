package characters

import (
	"log/slog"

	"github.com/inkwell-ai/inkwell/internal/textstore"
)

// Tracker owns the persisted character collection of one project.
type Tracker struct {
	store  *textstore.Store
	logger *slog.Logger
}

// NewTracker creates a Tracker over the project's text store.
// A nil logger defaults to slog.Default().
func NewTracker(store *textstore.Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, logger: logger}
}

// Load reads the persisted collection. Blocks without a parsable ID header
// were already dropped by the text store; blocks that fail the record parse
// are skipped with a warning.
func (t *Tracker) Load() map[string]*Record {
	records := make(map[string]*Record)
	for id, block := range t.store.Load(textstore.CollectionCharacterState) {
		r := ParseBlock(block, t.logger)
		if r == nil {
			t.logger.Warn("skipping corrupt character block", "id", id)
			continue
		}
		records[r.ID] = r
	}
	return records
}

// Save persists the full record set. Returns false on I/O failure.
func (t *Tracker) Save(records map[string]*Record) bool {
	blocks := make(map[string]string, len(records))
	for id, r := range records {
		blocks[id] = RenderBlock(r)
	}
	return t.store.Save(textstore.CollectionCharacterState, blocks)
}

// ApplyUpdate parses a model-emitted character update (one or more record
// blocks) and merges it into the persisted store. New characters are created
// on first mention; existing ones are merged per section. Returns false when
// the final save fails.
func (t *Tracker) ApplyUpdate(updateText string) bool {
	records := t.Load()
	for _, update := range ParseDocument(updateText, t.logger) {
		if existing, ok := records[update.ID]; ok {
			Merge(existing, update)
		} else {
			records[update.ID] = update
		}
	}
	return t.Save(records)
}

// Delete removes one character. Manual admin operation; the pipeline itself
// never deletes records.
func (t *Tracker) Delete(id string) bool {
	return t.store.DeleteOne(textstore.CollectionCharacterState, id)
}
