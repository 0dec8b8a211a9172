package foreshadow

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Mention is one foreshadowing line as written in a chapter blueprint:
//
//	MF001(主线伏笔)-神秘钥匙-埋设-钥匙出现在地窖（第12章前必须回收）
//
// DeclaredType carries whatever type name the model wrote; the id prefix
// wins when they disagree.
type Mention struct {
	ID              string
	DeclaredType    string
	Title           string
	Action          Action
	Content         string
	DeadlineChapter int
	Raw             string
}

var (
	// mentionPattern captures id, declared type and the dash-joined rest.
	// Both half-width and full-width parentheses appear in model output.
	mentionPattern = regexp.MustCompile(`^([A-Z]{2}\d{3})[（(]([^）)]*)[）)]-(.+)$`)

	// deadlinePattern matches the trailing deadline note on a content field.
	deadlinePattern = regexp.MustCompile(`[（(]第(\d+)章前[^）)]*[）)]\s*$`)

	// sectionMarkerPattern matches the start of any labeled blueprint section.
	sectionMarkerPattern = regexp.MustCompile(`^[├└]─`)

	// chapterHeaderPattern matches the start of a blueprint block.
	chapterHeaderPattern = regexp.MustCompile(`^第\d+章`)

	// groupHeaderPattern matches the 【...】 category headers that rendered
	// store views group mentions under.
	groupHeaderPattern = regexp.MustCompile(`^【[^】]*】$`)

	// idCandidatePattern marks a line that attempts the mention grammar,
	// as opposed to state-detail lines inside rendered views.
	idCandidatePattern = regexp.MustCompile(`^[A-Z]{2}\d{3}`)

	foreshadowSectionLabel = "伏笔条目"
	foreshadowKeyword      = "伏笔"
)

// ExtractMentions scans text for foreshadowing lines. Lines are considered
// inside a blueprint 伏笔条目 section or under a rendered view's 【...伏笔...】
// group header; a section ends at the next labeled section, group header or
// chapter header. Candidate lines that start with an id but fail the grammar
// are skipped and logged one by one; a text with zero mentions is not an
// error.
func ExtractMentions(text string, logger *slog.Logger) []Mention {
	if logger == nil {
		logger = slog.Default()
	}

	var mentions []Mention
	inSection := false

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)

		if chapterHeaderPattern.MatchString(line) {
			inSection = false
			continue
		}
		if groupHeaderPattern.MatchString(line) {
			inSection = strings.Contains(line, foreshadowKeyword)
			continue
		}
		if sectionMarkerPattern.MatchString(line) {
			inSection = strings.Contains(line, foreshadowSectionLabel)
			// The label line itself may carry the first mention after the colon.
			if inSection {
				if _, rest, ok := strings.Cut(line, "："); ok {
					line = strings.TrimSpace(rest)
				} else if _, rest, ok := strings.Cut(line, ":"); ok {
					line = strings.TrimSpace(rest)
				} else {
					continue
				}
			} else {
				continue
			}
		}
		if !inSection || line == "" {
			continue
		}

		candidate := stripBulletPrefix(line)
		if candidate == "" {
			continue
		}

		m, ok := parseMentionLine(candidate)
		if !ok {
			if idCandidatePattern.MatchString(candidate) {
				logger.Warn("skipping malformed foreshadowing line", "line", candidate)
			}
			continue
		}
		mentions = append(mentions, m)
	}
	return mentions
}

// ParseMentionLine parses a single mention line outside any section context.
// Used when re-ingesting previously rendered views.
func ParseMentionLine(line string) (Mention, bool) {
	return parseMentionLine(stripBulletPrefix(strings.TrimSpace(line)))
}

func parseMentionLine(line string) (Mention, bool) {
	groups := mentionPattern.FindStringSubmatch(line)
	if groups == nil {
		return Mention{}, false
	}
	id := groups[1]
	if !ValidID(id) {
		return Mention{}, false
	}

	// Title, action and content are dash-separated; content may itself
	// contain dashes, so only the first two cuts are structural.
	parts := strings.SplitN(groups[3], "-", 3)
	if len(parts) < 2 {
		return Mention{}, false
	}

	m := Mention{
		ID:           id,
		DeclaredType: strings.TrimSpace(groups[2]),
		Title:        strings.TrimSpace(parts[0]),
		Action:       Action(strings.TrimSpace(parts[1])),
		Raw:          line,
	}
	if m.Title == "" || m.Action == "" {
		return Mention{}, false
	}

	if len(parts) == 3 {
		content := strings.TrimSpace(parts[2])
		if dm := deadlinePattern.FindStringSubmatch(content); dm != nil {
			m.DeadlineChapter, _ = strconv.Atoi(dm[1])
			content = strings.TrimSpace(content[:len(content)-len(dm[0])])
		}
		m.Content = content
	}
	return m, true
}

// stripBulletPrefix removes tree glyphs, list bullets and the resolved-marker
// glyphs that blueprint sections and rendered views put in front of mention
// lines.
func stripBulletPrefix(line string) string {
	for {
		trimmed := strings.TrimLeft(line, " \t│|")
		trimmed = strings.TrimPrefix(trimmed, "- ")
		trimmed = strings.TrimPrefix(trimmed, "·")
		trimmed = strings.TrimPrefix(trimmed, resolvedGlyph)
		trimmed = strings.TrimPrefix(trimmed, unresolvedGlyph)
		if trimmed == line {
			return strings.TrimSpace(trimmed)
		}
		line = trimmed
	}
}

// Merge folds extracted mentions for one chapter into the store. It is
// idempotent: re-merging the same mentions changes nothing.
//
// Rules:
//   - the id prefix decides the type, whatever the declared type name says
//   - unknown ids create new entries; a first mention whose action is not
//     埋设 gets an implicit planting state at the same chapter
//   - (action, chapter) states are appended once
//   - 回收 marks the entry resolved
//   - a deadline backfills only if the entry has none yet
//   - new content extends existing content instead of replacing it
func Merge(store map[string]*Entry, chapter int, mentions []Mention, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, m := range mentions {
		typ, ok := TypeFromID(m.ID)
		if !ok {
			logger.Warn("skipping mention with unknown id prefix", "id", m.ID)
			continue
		}
		if m.DeclaredType != "" && m.DeclaredType != typ.Name() {
			logger.Warn("declared type disagrees with id prefix, trusting prefix",
				"id", m.ID, "declared", m.DeclaredType, "prefix_type", typ.Name())
		}

		e, exists := store[m.ID]
		if !exists {
			e = &Entry{ID: m.ID, Type: typ, Title: m.Title}
			if m.Action != ActionPlant {
				// Thread referenced before any planting we saw: record an
				// inferred origin so the lifecycle stays complete.
				e.States = append(e.States, State{Action: ActionPlant, Chapter: chapter})
			}
			store[m.ID] = e
		}
		e.Type = typ
		if e.Title == "" {
			e.Title = m.Title
		}

		st := State{Action: m.Action, Chapter: chapter}
		if !e.HasState(st) {
			e.States = append(e.States, st)
		}
		if m.Action == ActionResolve {
			e.Resolved = true
		}
		if e.DeadlineChapter == 0 && m.DeadlineChapter > 0 {
			e.DeadlineChapter = m.DeadlineChapter
		}
		if m.Content != "" && !strings.Contains(e.Content, m.Content) {
			if e.Content == "" {
				e.Content = m.Content
			} else {
				e.Content += "；" + m.Content
			}
		}
	}
}
