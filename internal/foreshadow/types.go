// Package foreshadow tracks planted narrative threads across chapter
// blueprints: it extracts mention lines from blueprint text, merges them into
// a persisted per-project store, and renders the views that later prompts
// consume (unresolved threads, highest allocated ids per category).
package foreshadow

import (
	"fmt"
	"regexp"
	"strconv"
)

// ThreadType is one of the five foreshadowing categories. The two-letter id
// prefix is the authoritative encoding; the Chinese name is display form.
type ThreadType string

const (
	TypeMain      ThreadType = "MF" // 主线伏笔
	TypeHidden    ThreadType = "AF" // 暗线伏笔
	TypeCharacter ThreadType = "CF" // 人物伏笔
	TypeSide      ThreadType = "SF" // 支线伏笔
	TypeGeneral   ThreadType = "YF" // 一般伏笔
)

// AllTypes lists the categories in prefix-alphabetical order, which is also
// the fixed rendering order of the unresolved view.
var AllTypes = []ThreadType{TypeHidden, TypeCharacter, TypeMain, TypeSide, TypeGeneral}

var typeNames = map[ThreadType]string{
	TypeMain:      "主线伏笔",
	TypeHidden:    "暗线伏笔",
	TypeCharacter: "人物伏笔",
	TypeSide:      "支线伏笔",
	TypeGeneral:   "一般伏笔",
}

// Name returns the Chinese display name of the type.
func (t ThreadType) Name() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return string(t)
}

// Valid reports whether t is one of the five canonical types.
func (t ThreadType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// TypeFromID derives the category from an id like "MF001".
// The prefix is ground truth even when a mention declares another type name.
func TypeFromID(id string) (ThreadType, bool) {
	if len(id) < 2 {
		return "", false
	}
	t := ThreadType(id[:2])
	return t, t.Valid()
}

// Action is a lifecycle step of a thread. Stored as its Chinese label so
// previously rendered text re-parses without translation tables.
type Action string

const (
	ActionPlant     Action = "埋设"
	ActionTrigger   Action = "触发"
	ActionReinforce Action = "强化"
	ActionResolve   Action = "回收"
	ActionSuspend   Action = "搁置"
)

// State records one lifecycle step in one chapter.
type State struct {
	Action  Action
	Chapter int
}

// Label renders the state as it appears in store blocks, e.g. "埋设（第3章）".
func (s State) Label() string {
	return fmt.Sprintf("%s（第%d章）", s.Action, s.Chapter)
}

// Entry is one tracked foreshadowing thread.
type Entry struct {
	ID              string
	Type            ThreadType
	Title           string
	Content         string
	DeadlineChapter int // 0 = no deadline
	States          []State
	Resolved        bool
}

// NumericSuffix returns the numeric part of the entry id ("MF007" -> 7).
func (e *Entry) NumericSuffix() int {
	if len(e.ID) <= 2 {
		return 0
	}
	n, _ := strconv.Atoi(e.ID[2:])
	return n
}

// HasState reports whether the exact (action, chapter) pair is recorded.
func (e *Entry) HasState(st State) bool {
	for _, have := range e.States {
		if have == st {
			return true
		}
	}
	return false
}

// idPattern matches a canonical foreshadowing id.
var idPattern = regexp.MustCompile(`^[A-Z]{2}\d{3}$`)

// ValidID reports whether id has the canonical <prefix><3 digits> shape with
// a known prefix.
func ValidID(id string) bool {
	if !idPattern.MatchString(id) {
		return false
	}
	_, ok := TypeFromID(id)
	return ok
}
