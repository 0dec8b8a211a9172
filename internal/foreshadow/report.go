package foreshadow

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	resolvedGlyph   = "✅"
	unresolvedGlyph = "⏳"
)

// RenderStore produces the readable dump of the whole store: entries grouped
// by category in the fixed AllTypes order, each prefixed with a resolved
// marker, each state on its own indented line.
func RenderStore(entries map[string]*Entry) string {
	var b strings.Builder
	byType := make(map[ThreadType][]*Entry)
	for _, e := range sortedEntries(entries) {
		byType[e.Type] = append(byType[e.Type], e)
	}

	for _, typ := range AllTypes {
		group := byType[typ]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "【%s】\n", typ.Name())
		for _, e := range group {
			glyph := unresolvedGlyph
			if e.Resolved {
				glyph = resolvedGlyph
			}
			fmt.Fprintf(&b, "%s %s\n", glyph, MentionLine(e))
			for _, st := range e.States {
				fmt.Fprintf(&b, "    - %s\n", st.Label())
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// MentionLine renders an entry back into the blueprint mention grammar so a
// rendered view can be re-extracted and re-merged without loss. The latest
// action is used; the deadline note rides on the content field.
func MentionLine(e *Entry) string {
	action := ActionPlant
	if len(e.States) > 0 {
		action = e.States[len(e.States)-1].Action
	}
	content := e.Content
	if e.DeadlineChapter > 0 {
		content += fmt.Sprintf("（第%d章前必须回收）", e.DeadlineChapter)
	}
	return fmt.Sprintf("%s(%s)-%s-%s-%s", e.ID, e.Type.Name(), e.Title, action, content)
}

// Unresolved returns the entries that have not been paid off, in stable
// rendering order.
func Unresolved(entries map[string]*Entry) []*Entry {
	var out []*Entry
	for _, e := range sortedEntries(entries) {
		if !e.Resolved {
			out = append(out, e)
		}
	}
	return out
}

// HistoryLookup resolves the original blueprint line for a foreshadowing id
// in one chapter's directory entry. Supplied by the caller so this package
// stays independent of the blueprint document layout.
type HistoryLookup func(chapter int, id string) string

// UnresolvedWithHistory renders the prompt feed that reminds the model which
// threads are still open. For every unresolved entry each recorded state is
// listed with the original blueprint line of that chapter when one is found.
func UnresolvedWithHistory(entries map[string]*Entry, lookup HistoryLookup) string {
	open := Unresolved(entries)
	if len(open) == 0 {
		return "（当前没有未回收的伏笔）"
	}

	var b strings.Builder
	current := ThreadType("")
	for _, e := range open {
		if e.Type != current {
			if current != "" {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "【%s·未回收】\n", e.Type.Name())
			current = e.Type
		}
		fmt.Fprintf(&b, "%s %s\n", unresolvedGlyph, MentionLine(e))
		for _, st := range e.States {
			line := ""
			if lookup != nil {
				line = lookup(st.Chapter, e.ID)
			}
			if line != "" {
				fmt.Fprintf(&b, "    - %s：%s\n", st.Label(), line)
			} else {
				fmt.Fprintf(&b, "    - %s\n", st.Label())
			}
		}
		if e.DeadlineChapter > 0 {
			fmt.Fprintf(&b, "    - 回收期限：第%d章前\n", e.DeadlineChapter)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// OverdueUnresolved returns unresolved entries whose deadline is at or before
// the given chapter. These are data-quality warnings surfaced to the prompt,
// not structural errors.
func OverdueUnresolved(entries map[string]*Entry, chapter int) []*Entry {
	var out []*Entry
	for _, e := range Unresolved(entries) {
		if e.DeadlineChapter > 0 && e.DeadlineChapter <= chapter {
			out = append(out, e)
		}
	}
	return out
}

var rawIDPattern = regexp.MustCompile(`\b([A-Z]{2})(\d{3})\b`)

// MaxIDsPerType scans every id in the store plus any raw texts and returns
// the highest numeric suffix seen per category. Resolved entries count: their
// ids stay taken forever.
func MaxIDsPerType(entries map[string]*Entry, rawTexts ...string) map[ThreadType]int {
	max := make(map[ThreadType]int, len(AllTypes))
	for _, typ := range AllTypes {
		max[typ] = 0
	}
	bump := func(typ ThreadType, n int) {
		if typ.Valid() && n > max[typ] {
			max[typ] = n
		}
	}
	for _, e := range entries {
		bump(e.Type, e.NumericSuffix())
	}
	for _, text := range rawTexts {
		for _, m := range rawIDPattern.FindAllStringSubmatch(text, -1) {
			n := 0
			fmt.Sscanf(m[2], "%d", &n)
			bump(ThreadType(m[1]), n)
		}
	}
	return max
}

// MaxIDsText formats MaxIDsPerType for prompt injection, telling the model
// which ids are already allocated in each category.
func MaxIDsText(entries map[string]*Entry, rawTexts ...string) string {
	max := MaxIDsPerType(entries, rawTexts...)
	var b strings.Builder
	for _, typ := range AllTypes {
		fmt.Fprintf(&b, "%s %s：%s%03d\n", typ.Name(), string(typ), string(typ), max[typ])
	}
	return strings.TrimRight(b.String(), "\n")
}
