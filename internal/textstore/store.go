// Package textstore persists keyed collections of semi-structured text
// records as markdown files. Each record is a text block; blocks are
// separated by a line containing exactly "---". The two collections it knows
// about (character state, foreshadowing) have deterministic sort orders so
// that a save after an unchanged load is byte-identical.
package textstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Collection identifies one persisted store within a project.
type Collection string

const (
	// CollectionCharacterState holds one block per character.
	CollectionCharacterState Collection = "character_state_collection"

	// CollectionForeshadowing holds one block per foreshadowing entry.
	CollectionForeshadowing Collection = "foreshadowing_collection"
)

// Separator is the record separator line.
const Separator = "---"

var collectionFiles = map[Collection]string{
	CollectionCharacterState: "character_state.txt",
	CollectionForeshadowing:  "foreshadowing_state.txt",
}

var (
	characterIDPattern  = regexp.MustCompile(`^(ID\d+)：`)
	foreshadowIDPattern = regexp.MustCompile(`(?m)^ID:\s*([A-Z]{2}\d{3})\s*$`)
)

// typePriority orders foreshadowing blocks by category before numeric suffix.
var typePriority = map[string]int{"MF": 0, "AF": 1, "CF": 2, "SF": 3, "YF": 4}

// Store reads and writes the text-block collections of one project.
// All failures are converted to empty-map / false returns plus a log line;
// callers must check the boolean on every mutation.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store over the given collections directory.
// A nil logger defaults to slog.Default().
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// FilePath returns the on-disk path for a collection.
func (s *Store) FilePath(c Collection) string {
	name, ok := collectionFiles[c]
	if !ok {
		name = string(c) + ".txt"
	}
	return filepath.Join(s.dir, name)
}

// Load reads a collection into an id -> block mapping. A missing file yields
// an empty mapping. Read errors and unkeyable blocks are logged as warnings
// and degrade to an empty (or partial) mapping, never an error return.
func (s *Store) Load(c Collection) map[string]string {
	records := make(map[string]string)

	data, err := os.ReadFile(s.FilePath(c))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read collection, treating as empty",
				"collection", c, "error", err)
		}
		return records
	}

	for _, block := range SplitBlocks(string(data)) {
		id, ok := extractID(c, block)
		if !ok {
			s.logger.Warn("skipping block with no recognizable id",
				"collection", c, "preview", preview(block))
			continue
		}
		records[id] = block
	}
	return records
}

// Save serializes the mapping in the collection's canonical order and writes
// it atomically (temp file + rename). Returns false on any failure; the
// previous file contents remain intact in that case.
func (s *Store) Save(c Collection, records map[string]string) bool {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sortIDs(c, ids)

	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteString("\n" + Separator + "\n")
		}
		b.WriteString(strings.TrimRight(records[id], "\n"))
		b.WriteString("\n")
	}

	path := s.FilePath(c)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger.Error("failed to create collection directory",
			"collection", c, "error", err)
		return false
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		s.logger.Error("failed to write collection", "collection", c, "error", err)
		return false
	}
	if err := os.Rename(tmp, path); err != nil {
		s.logger.Error("failed to replace collection file", "collection", c, "error", err)
		_ = os.Remove(tmp)
		return false
	}
	return true
}

// UpdateOne loads the collection, upserts one record and saves.
func (s *Store) UpdateOne(c Collection, id, block string) bool {
	records := s.Load(c)
	records[id] = block
	return s.Save(c, records)
}

// DeleteOne loads the collection, removes one record if present and saves.
// Deleting an absent id is a no-op success.
func (s *Store) DeleteOne(c Collection, id string) bool {
	records := s.Load(c)
	if _, ok := records[id]; !ok {
		return true
	}
	delete(records, id)
	return s.Save(c, records)
}

// SplitBlocks splits a collection file into record blocks on separator lines.
// Empty blocks are dropped.
func SplitBlocks(text string) []string {
	var blocks []string
	var cur []string
	flush := func() {
		block := strings.TrimSpace(strings.Join(cur, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == Separator {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

func extractID(c Collection, block string) (string, bool) {
	switch c {
	case CollectionForeshadowing:
		if m := foreshadowIDPattern.FindStringSubmatch(block); m != nil {
			return m[1], true
		}
	default:
		first := block
		if i := strings.IndexByte(block, '\n'); i >= 0 {
			first = block[:i]
		}
		if m := characterIDPattern.FindStringSubmatch(first); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func sortIDs(c Collection, ids []string) {
	switch c {
	case CollectionForeshadowing:
		sort.Slice(ids, func(i, j int) bool {
			pi, ni := splitForeshadowID(ids[i])
			pj, nj := splitForeshadowID(ids[j])
			if typePriority[pi] != typePriority[pj] {
				return typePriority[pi] < typePriority[pj]
			}
			if ni != nj {
				return ni < nj
			}
			return ids[i] < ids[j]
		})
	default:
		sort.Slice(ids, func(i, j int) bool {
			ni := numericSuffix(ids[i])
			nj := numericSuffix(ids[j])
			if ni != nj {
				return ni < nj
			}
			return ids[i] < ids[j]
		})
	}
}

func splitForeshadowID(id string) (prefix string, n int) {
	if len(id) < 2 {
		return id, 0
	}
	prefix = id[:2]
	n, _ = strconv.Atoi(id[2:])
	return prefix, n
}

func numericSuffix(id string) int {
	i := 0
	for i < len(id) && (id[i] < '0' || id[i] > '9') {
		i++
	}
	n, _ := strconv.Atoi(id[i:])
	return n
}

func preview(block string) string {
	line := block
	if i := strings.IndexByte(block, '\n'); i >= 0 {
		line = block[:i]
	}
	if len(line) > 60 {
		line = line[:60]
	}
	return fmt.Sprintf("%q", line)
}
