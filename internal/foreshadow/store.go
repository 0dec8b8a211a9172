package foreshadow

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/inkwell-ai/inkwell/internal/textstore"
)

// Store block format. Half-width colons are deliberate: this store predates
// the character store and existing project files use them.
const (
	fieldID       = "ID"
	fieldType     = "类型"
	fieldTitle    = "标题"
	fieldContent  = "内容"
	fieldDeadline = "伏笔最后章节"
	fieldStates   = "状态"
)

var stateLinePattern = regexp.MustCompile(`^-\s*(.+?)（第(\d+)章）\s*$`)

// RenderBlock serializes one entry into its persisted block form.
func RenderBlock(e *Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", fieldID, e.ID)
	fmt.Fprintf(&b, "%s: %s\n", fieldType, e.Type.Name())
	fmt.Fprintf(&b, "%s: %s\n", fieldTitle, e.Title)
	fmt.Fprintf(&b, "%s: %s\n", fieldContent, e.Content)
	if e.DeadlineChapter > 0 {
		fmt.Fprintf(&b, "%s: 第%d章\n", fieldDeadline, e.DeadlineChapter)
	}
	fmt.Fprintf(&b, "%s:\n", fieldStates)
	for _, st := range e.States {
		fmt.Fprintf(&b, "- %s\n", st.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}

// ParseBlock parses one persisted block back into an entry. Resolved status
// is derived from the recorded states, not stored.
func ParseBlock(block string) (*Entry, error) {
	e := &Entry{}
	inStates := false

	for _, rawLine := range strings.Split(block, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if inStates {
			if m := stateLinePattern.FindStringSubmatch(line); m != nil {
				chapter, _ := strconv.Atoi(m[2])
				e.States = append(e.States, State{Action: Action(m[1]), Chapter: chapter})
				continue
			}
			inStates = false
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case fieldID:
			e.ID = value
		case fieldType:
			// Display only; the id prefix is authoritative below.
		case fieldTitle:
			e.Title = value
		case fieldContent:
			e.Content = value
		case fieldDeadline:
			if m := regexp.MustCompile(`第(\d+)章`).FindStringSubmatch(value); m != nil {
				e.DeadlineChapter, _ = strconv.Atoi(m[1])
			}
		case fieldStates:
			inStates = true
		}
	}

	if !ValidID(e.ID) {
		return nil, fmt.Errorf("block has no valid foreshadowing id")
	}
	e.Type, _ = TypeFromID(e.ID)
	for _, st := range e.States {
		if st.Action == ActionResolve {
			e.Resolved = true
		}
	}
	return e, nil
}

// Tracker owns the persisted foreshadowing collection of one project.
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

// Load reads the persisted collection. Blocks that fail to parse are skipped
// with a warning so one corrupt record never hides the rest.
func (t *Tracker) Load() map[string]*Entry {
	entries := make(map[string]*Entry)
	for id, block := range t.store.Load(textstore.CollectionForeshadowing) {
		e, err := ParseBlock(block)
		if err != nil {
			t.logger.Warn("skipping corrupt foreshadowing block", "id", id, "error", err)
			continue
		}
		entries[e.ID] = e
	}
	return entries
}

// Save persists the full entry set. Returns false on I/O failure; the
// previous file stays intact in that case.
func (t *Tracker) Save(entries map[string]*Entry) bool {
	blocks := make(map[string]string, len(entries))
	for id, e := range entries {
		blocks[id] = RenderBlock(e)
	}
	return t.store.Save(textstore.CollectionForeshadowing, blocks)
}

// ApplyBlueprint extracts mentions from newly generated blueprint text,
// merges them into the persisted store for the given chapter range start and
// saves. Each mention carries no chapter of its own, so the text is scanned
// per chapter block first.
func (t *Tracker) ApplyBlueprint(text string) bool {
	entries := t.Load()
	for chapter, block := range splitByChapter(text) {
		Merge(entries, chapter, ExtractMentions(block, t.logger), t.logger)
	}
	return t.Save(entries)
}

// splitByChapter cuts blueprint text into per-chapter fragments keyed by
// chapter number. Text before the first chapter header is ignored.
func splitByChapter(text string) map[int]string {
	out := make(map[int]string)
	var cur []string
	chapter := 0
	flush := func() {
		if chapter > 0 {
			out[chapter] = strings.Join(cur, "\n")
		}
		cur = cur[:0]
	}
	headerPattern := regexp.MustCompile(`^第(\d+)章`)
	for _, line := range strings.Split(text, "\n") {
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			chapter, _ = strconv.Atoi(m[1])
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

// sortedEntries returns entries ordered by (type priority order of AllTypes,
// numeric suffix).
func sortedEntries(entries map[string]*Entry) []*Entry {
	order := make(map[ThreadType]int, len(AllTypes))
	for i, typ := range AllTypes {
		order[typ] = i
	}
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if order[out[i].Type] != order[out[j].Type] {
			return order[out[i].Type] < order[out[j].Type]
		}
		return out[i].NumericSuffix() < out[j].NumericSuffix()
	})
	return out
}
