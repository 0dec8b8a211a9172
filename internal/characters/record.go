// Package characters tracks per-character narrative state across finalized
// chapters: identity, faction, condition, events, relationships and location
// history. Records are parsed from model-emitted update blocks, merged into a
// persisted store and summarized into a compact index table for later
// prompts.
package characters

import (
	"strconv"
	"strings"
)

// Pair is one ordered key/value of a dict-valued section. Dict sections keep
// insertion order so a save after an unchanged load is byte-identical.
type Pair struct {
	Key   string
	Value string
}

// Fields is an ordered dict section.
type Fields []Pair

// Get returns the value for key, or "".
func (f Fields) Get(key string) string {
	for _, p := range f {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Set upserts a key in place, preserving order for existing keys.
func (f *Fields) Set(key, value string) {
	for i, p := range *f {
		if p.Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Pair{Key: key, Value: value})
}

// Event is one 关键事件记录 line.
type Event struct {
	Chapter int
	Type    string
	Summary string
}

// Relation is one 关系网 line.
type Relation struct {
	Target    string
	Relation  string
	Strength  int
	Frequency int
}

// Location is one 位置轨迹 line. Extra keeps trailing attributes in order.
type Location struct {
	Scene   string
	Chapter int
	Extra   []Pair
}

// Record is the canonical state of one character.
type Record struct {
	ID   string
	Name string

	Basics  Fields // 基础信息 (权重, 别名, ...)
	Status  Fields // 生命状态
	Faction Fields // 势力特征

	Locations []Location // 位置轨迹
	Events    []Event    // 关键事件记录
	Relations []Relation // 关系网
	Items     []string   // 持有物品
	Abilities []string   // 技术能力

	// Extra holds unknown sections and lines that matched no mini-grammar
	// of their section, keyed by section name. Nothing is silently dropped.
	Extra map[string][]string
}

// NewRecord creates an empty record.
func NewRecord(id, name string) *Record {
	return &Record{ID: id, Name: name, Extra: make(map[string][]string)}
}

// Weight returns the 角色权重 value from 基础信息, or 0 when absent or
// unparseable.
func (r *Record) Weight() int {
	raw := strings.TrimSpace(r.Basics.Get("角色权重"))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Aliases returns the 别名 list from 基础信息.
func (r *Record) Aliases() []string {
	raw := strings.TrimSpace(r.Basics.Get("别名"))
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(c rune) bool {
		return c == '、' || c == ',' || c == '，' || c == '/'
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FactionName returns the 所属势力 value, or "".
func (r *Record) FactionName() string {
	return strings.TrimSpace(r.Faction.Get("所属势力"))
}

// StatusSummary returns a short body/mind condition string for index rows.
func (r *Record) StatusSummary() string {
	var parts []string
	for _, p := range r.Status {
		parts = append(parts, p.Key+p.Value)
	}
	return strings.Join(parts, "；")
}

// LastSeenChapter returns the highest chapter recorded in events or
// locations, or 0 when the character has no chapter-stamped history.
func (r *Record) LastSeenChapter() int {
	last := 0
	for _, ev := range r.Events {
		if ev.Chapter > last {
			last = ev.Chapter
		}
	}
	for _, loc := range r.Locations {
		if loc.Chapter > last {
			last = loc.Chapter
		}
	}
	return last
}

// CurrentLocation returns the scene of the location entry with the highest
// chapter number, or "".
func (r *Record) CurrentLocation() string {
	best := -1
	scene := ""
	for _, loc := range r.Locations {
		if loc.Chapter >= best {
			best = loc.Chapter
			scene = loc.Scene
		}
	}
	return scene
}

// NumericID returns the digits of the record id ("ID0001" -> 1).
func (r *Record) NumericID() int {
	digits := strings.TrimLeft(r.ID, "ID")
	n, _ := strconv.Atoi(digits)
	return n
}

// Tier labels, closed-closed boundaries.
const (
	TierBackground = "背景角色（1-20）"
	TierEpisodic   = "单元角色（21-40）"
	TierFunctional = "功能配角（41-60）"
	TierMajor      = "重要配角（61-80）"
	TierCore       = "核心配角（81-95）"
	TierLead       = "主角（96-100）"
)

// AllTiers lists the tiers from lightest to heaviest.
var AllTiers = []string{
	TierBackground, TierEpisodic, TierFunctional, TierMajor, TierCore, TierLead,
}

// WeightTier maps a weight to its tier label. Weights outside 1-100 have no
// tier and return ("", false); they are stored but excluded from tier counts.
func WeightTier(weight int) (string, bool) {
	if weight < 1 || weight > 100 {
		return "", false
	}
	switch {
	case weight <= 20:
		return TierBackground, true
	case weight <= 40:
		return TierEpisodic, true
	case weight <= 60:
		return TierFunctional, true
	case weight <= 80:
		return TierMajor, true
	case weight <= 95:
		return TierCore, true
	case weight <= 100:
		return TierLead, true
	}
	return "", false
}

// CoreWeightThreshold marks the weight at which a character counts as core.
const CoreWeightThreshold = 81

// ActiveChapterWindow is how far behind the latest chapter a character may
// have last appeared and still count as active.
const ActiveChapterWindow = 20
