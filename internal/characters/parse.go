package characters

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// sectionKind is the closed set of known section shapes. Unknown section
// names fall through to kindUnknown and collect raw lines.
type sectionKind int

const (
	kindUnknown sectionKind = iota
	kindBasics
	kindStatus
	kindFaction
	kindLocations
	kindEvents
	kindRelations
	kindItems
	kindAbilities
)

// Section names as they appear in record blocks. Order matters for
// rendering; see sectionOrder in render.go.
const (
	SectionBasics    = "基础信息"
	SectionStatus    = "生命状态"
	SectionFaction   = "势力特征"
	SectionLocations = "位置轨迹"
	SectionEvents    = "关键事件记录"
	SectionRelations = "关系网"
	SectionItems     = "持有物品"
	SectionAbilities = "技术能力"
)

var sectionKinds = map[string]sectionKind{
	SectionBasics:    kindBasics,
	SectionStatus:    kindStatus,
	SectionFaction:   kindFaction,
	SectionLocations: kindLocations,
	SectionEvents:    kindEvents,
	SectionRelations: kindRelations,
	SectionItems:     kindItems,
	SectionAbilities: kindAbilities,
}

var (
	headerPattern   = regexp.MustCompile(`^(ID\d+)：(.*)$`)
	sectionPattern  = regexp.MustCompile(`^([^：:\s-][^：:]*)：\s*$`)
	eventPattern    = regexp.MustCompile(`^第(\d+)章[：:]\s*\[([^\]]*)\]\s*(.*)$`)
	relationPattern = regexp.MustCompile(`^(.+?)[：:]\s*(.+?)[,，]\s*关系强度\[(\d+)\][,，]\s*互动频率\[(\d+)\]\s*$`)
	chapterPattern  = regexp.MustCompile(`第(\d+)章`)
)

// ParseBlock parses one character record block. The first line must be the
// `ID0001：姓名` header; a block without it is unusable and returns nil.
// Everything after is routed per open section; lines that fit no mini-grammar
// are kept as untyped strings under their section name.
func ParseBlock(block string, logger *slog.Logger) *Record {
	if logger == nil {
		logger = slog.Default()
	}

	lines := strings.Split(block, "\n")
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) {
		return nil
	}

	head := headerPattern.FindStringSubmatch(strings.TrimSpace(lines[start]))
	if head == nil {
		logger.Warn("skipping character block without ID header",
			"first_line", strings.TrimSpace(lines[start]))
		return nil
	}

	r := NewRecord(head[1], strings.TrimSpace(head[2]))
	section := ""
	kind := kindUnknown

	for _, rawLine := range lines[start+1:] {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			section = strings.TrimSpace(m[1])
			kind = sectionKinds[section]
			continue
		}

		if !strings.HasPrefix(line, "- ") {
			r.keepUntyped(section, line)
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if item == "" {
			continue
		}

		switch kind {
		case kindBasics:
			r.parseDictLine(&r.Basics, section, item)
		case kindStatus:
			r.parseDictLine(&r.Status, section, item)
		case kindFaction:
			r.parseDictLine(&r.Faction, section, item)
		case kindLocations:
			if loc, ok := parseLocationLine(item); ok {
				r.Locations = append(r.Locations, loc)
			} else {
				r.keepUntyped(section, item)
			}
		case kindEvents:
			if ev, ok := parseEventLine(item); ok {
				r.Events = append(r.Events, ev)
			} else {
				r.keepUntyped(section, item)
			}
		case kindRelations:
			if rel, ok := parseRelationLine(item); ok {
				r.Relations = append(r.Relations, rel)
			} else {
				r.keepUntyped(section, item)
			}
		case kindItems:
			r.Items = append(r.Items, item)
		case kindAbilities:
			r.Abilities = append(r.Abilities, item)
		default:
			r.keepUntyped(section, item)
		}
	}
	return r
}

// ParseDocument parses a whole store file (or a model update covering several
// characters) into records. Blocks that fail the header check are skipped
// with a warning and do not abort the rest.
func ParseDocument(text string, logger *slog.Logger) []*Record {
	var out []*Record
	for _, block := range splitRecordBlocks(text) {
		if r := ParseBlock(block, logger); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func splitRecordBlocks(text string) []string {
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
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" {
			flush()
			continue
		}
		// A new ID header also starts a new block; model updates often omit
		// the separator between characters.
		if headerPattern.MatchString(trimmed) && len(cur) > 0 {
			flush()
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

func (r *Record) keepUntyped(section, line string) {
	key := section
	if key == "" {
		key = "未分类"
	}
	r.Extra[key] = append(r.Extra[key], line)
}

// parseDictLine routes `key：value` bullets; a bullet without a colon is
// untyped, not dropped.
func (r *Record) parseDictLine(fields *Fields, section, item string) {
	key, value, ok := cutColon(item)
	if !ok {
		r.keepUntyped(section, item)
		return
	}
	fields.Set(key, value)
}

// parseLocationLine handles `场景 - 章节：第12章 - 状态：潜伏`.
func parseLocationLine(item string) (Location, bool) {
	parts := strings.Split(item, " - ")
	if len(parts) < 2 {
		return Location{}, false
	}
	loc := Location{Scene: strings.TrimSpace(parts[0])}
	if loc.Scene == "" {
		return Location{}, false
	}
	for _, part := range parts[1:] {
		key, value, ok := cutColon(strings.TrimSpace(part))
		if !ok {
			loc.Extra = append(loc.Extra, Pair{Key: "", Value: strings.TrimSpace(part)})
			continue
		}
		if key == "章节" {
			if m := chapterPattern.FindStringSubmatch(value); m != nil {
				loc.Chapter, _ = strconv.Atoi(m[1])
				continue
			}
		}
		loc.Extra = append(loc.Extra, Pair{Key: key, Value: value})
	}
	return loc, true
}

// parseEventLine handles `第3章：[转折] 身份暴露`.
func parseEventLine(item string) (Event, bool) {
	m := eventPattern.FindStringSubmatch(item)
	if m == nil {
		return Event{}, false
	}
	chapter, _ := strconv.Atoi(m[1])
	return Event{Chapter: chapter, Type: m[2], Summary: strings.TrimSpace(m[3])}, true
}

// parseRelationLine handles `李默: 挚友,关系强度[80],互动频率[12]`.
func parseRelationLine(item string) (Relation, bool) {
	m := relationPattern.FindStringSubmatch(item)
	if m == nil {
		return Relation{}, false
	}
	strength, _ := strconv.Atoi(m[3])
	frequency, _ := strconv.Atoi(m[4])
	return Relation{
		Target:    strings.TrimSpace(m[1]),
		Relation:  strings.TrimSpace(m[2]),
		Strength:  strength,
		Frequency: frequency,
	}, true
}

// cutColon splits on the first full-width or half-width colon.
func cutColon(s string) (key, value string, ok bool) {
	fw := strings.Index(s, "：")
	hw := strings.Index(s, ":")
	switch {
	case fw >= 0 && (hw < 0 || fw < hw):
		return strings.TrimSpace(s[:fw]), strings.TrimSpace(s[fw+len("："):]), true
	case hw >= 0:
		return strings.TrimSpace(s[:hw]), strings.TrimSpace(s[hw+1:]), true
	}
	return "", "", false
}
