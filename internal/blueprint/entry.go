// Package blueprint parses the chapter directory document: one structured
// outline block per chapter, in the fixed tree-glyph template the generation
// prompts request. The document is append-only and is the ground truth for
// "how far has generation progressed".
package blueprint

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Entry is one chapter's blueprint, extracted by section-header matching.
// All fields are free text; ForeshadowBlock is the raw 伏笔条目 section body
// consumed by the foreshadowing tracker.
type Entry struct {
	Chapter int
	Title   string

	Role            string // 定位
	Purpose         string // 核心作用
	Perspective     string // 叙事视角
	SceneSetting    string // 场景设定
	Characters      string // 出场角色与动机
	PlotArc         string // 情节脉络
	SuspenseType    string // 悬念类型
	EmotionArc      string // 情绪演变
	ForeshadowBlock string // 伏笔条目
	TwistLevel      string // 颠覆指数
	Summary         string // 本章简述

	Raw string // full block text, preserved verbatim
}

var (
	headerPattern  = regexp.MustCompile(`^第(\d+)章\s*[　\-－—]*\s*(.*)$`)
	sectionPattern = regexp.MustCompile(`^[├└]─\s*([^：:]+)[：:]\s*(.*)$`)
)

// ParseDocument parses the whole directory document. Blocks whose header
// doesn't parse are kept out of the result with a warning; later blocks still
// parse (best-effort, the text is model output).
func ParseDocument(text string, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = slog.Default()
	}

	var entries []Entry
	for _, block := range splitChapterBlocks(text) {
		e, ok := parseBlock(block)
		if !ok {
			logger.Warn("skipping unparseable blueprint block",
				"preview", firstLine(block))
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// splitChapterBlocks cuts the document at 第N章 header lines. Leading text
// before the first header is dropped.
func splitChapterBlocks(text string) []string {
	var blocks []string
	var cur []string
	started := false
	flush := func() {
		if started && len(cur) > 0 {
			blocks = append(blocks, strings.TrimRight(strings.Join(cur, "\n"), "\n"))
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if headerPattern.MatchString(strings.TrimSpace(line)) {
			flush()
			started = true
		}
		if started {
			cur = append(cur, line)
		}
	}
	flush()
	return blocks
}

func parseBlock(block string) (Entry, bool) {
	lines := strings.Split(block, "\n")
	if len(lines) == 0 {
		return Entry{}, false
	}

	head := headerPattern.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if head == nil {
		return Entry{}, false
	}
	chapter, err := strconv.Atoi(head[1])
	if err != nil || chapter <= 0 {
		return Entry{}, false
	}

	e := Entry{Chapter: chapter, Title: strings.TrimSpace(head[2]), Raw: block}

	section := ""
	var body []string
	assign := func() {
		if section == "" {
			return
		}
		e.setSection(section, strings.TrimRight(strings.Join(body, "\n"), "\n"))
		body = body[:0]
	}

	for _, rawLine := range lines[1:] {
		line := strings.TrimSpace(rawLine)
		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			assign()
			section = strings.TrimSpace(m[1])
			if rest := strings.TrimSpace(m[2]); rest != "" {
				body = append(body, rest)
			}
			continue
		}
		if section != "" {
			// Continuation lines keep their content but lose tree glyphs.
			body = append(body, strings.TrimLeft(line, "│| "))
		}
	}
	assign()
	return e, true
}

func (e *Entry) setSection(label, body string) {
	switch label {
	case "定位":
		e.Role = body
	case "核心作用":
		e.Purpose = body
	case "叙事视角":
		e.Perspective = body
	case "场景设定":
		e.SceneSetting = body
	case "出场角色与动机":
		e.Characters = body
	case "情节脉络":
		e.PlotArc = body
	case "悬念类型":
		e.SuspenseType = body
	case "情绪演变":
		e.EmotionArc = body
	case "伏笔条目":
		e.ForeshadowBlock = body
	case "颠覆指数":
		e.TwistLevel = body
	case "本章简述":
		e.Summary = body
	}
}

func firstLine(block string) string {
	if i := strings.IndexByte(block, '\n'); i >= 0 {
		return block[:i]
	}
	return block
}
