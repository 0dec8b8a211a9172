package characters

import (
	"fmt"
	"sort"
	"strings"
)

// IndexSummary is the one-pass aggregate over a character store.
type IndexSummary struct {
	Total       int
	TierCounts  map[string]int
	CoreCount   int            // weight >= CoreWeightThreshold
	ActiveCount int            // last seen within ActiveChapterWindow of the latest chapter
	MaxLastSeen int            // highest last-seen chapter across the store
	Factions    map[string][]string // faction name -> member names
}

// Summarize computes the index aggregates. Pure function of the store.
func Summarize(store map[string]*Record) IndexSummary {
	s := IndexSummary{
		TierCounts: make(map[string]int),
		Factions:   make(map[string][]string),
	}

	for _, r := range store {
		s.Total++
		weight := r.Weight()
		if tier, ok := WeightTier(weight); ok {
			s.TierCounts[tier]++
		}
		if weight >= CoreWeightThreshold && weight <= 100 {
			s.CoreCount++
		}
		if last := r.LastSeenChapter(); last > s.MaxLastSeen {
			s.MaxLastSeen = last
		}
		if faction := r.FactionName(); faction != "" {
			s.Factions[faction] = append(s.Factions[faction], r.Name)
		}
	}

	for _, r := range store {
		if r.LastSeenChapter() >= s.MaxLastSeen-ActiveChapterWindow {
			s.ActiveCount++
		}
	}

	for _, members := range s.Factions {
		sort.Strings(members)
	}
	return s
}

// BuildIndexTable renders the compact character index used as compressed
// context in later prompts: summary counts, a faction membership table, and
// one row per character sorted by weight descending. Deterministic, no I/O.
func BuildIndexTable(store map[string]*Record) string {
	s := Summarize(store)

	var b strings.Builder
	b.WriteString("## 角色索引总表\n\n")
	fmt.Fprintf(&b, "- 角色总数：%d\n", s.Total)
	fmt.Fprintf(&b, "- 核心角色数（权重≥%d）：%d\n", CoreWeightThreshold, s.CoreCount)
	fmt.Fprintf(&b, "- 活跃角色数（近%d章出场）：%d\n", ActiveChapterWindow, s.ActiveCount)
	for _, tier := range AllTiers {
		fmt.Fprintf(&b, "- %s：%d\n", tier, s.TierCounts[tier])
	}

	if len(s.Factions) > 0 {
		b.WriteString("\n### 势力成员\n\n")
		names := make([]string, 0, len(s.Factions))
		for name := range s.Factions {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("| 势力 | 成员 |\n|---|---|\n")
		for _, name := range names {
			fmt.Fprintf(&b, "| %s | %s |\n", name, strings.Join(s.Factions[name], "、"))
		}
	}

	b.WriteString("\n### 角色一览\n\n")
	b.WriteString("| ID | 姓名 | 别名 | 势力 | 状态 | 最后出场 | 当前位置 | 权重 |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, r := range sortByWeightDesc(store) {
		lastSeen := "—"
		if last := r.LastSeenChapter(); last > 0 {
			lastSeen = fmt.Sprintf("第%d章", last)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %d |\n",
			r.ID, r.Name,
			orDash(strings.Join(r.Aliases(), "、")),
			orDash(r.FactionName()),
			orDash(r.StatusSummary()),
			lastSeen,
			orDash(r.CurrentLocation()),
			r.Weight(),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FilterByWeightAndRecency bounds the cast injected into generation prompts:
// characters at or above the weight threshold whose last appearance is within
// chapterWindow of the store's latest chapter. Results sort by weight
// descending.
func FilterByWeightAndRecency(store map[string]*Record, weightThreshold, chapterWindow int) []*Record {
	maxLast := 0
	for _, r := range store {
		if last := r.LastSeenChapter(); last > maxLast {
			maxLast = last
		}
	}

	var out []*Record
	for _, r := range sortByWeightDesc(store) {
		if r.Weight() < weightThreshold {
			continue
		}
		if r.LastSeenChapter() < maxLast-chapterWindow {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortByWeightDesc(store map[string]*Record) []*Record {
	out := make([]*Record, 0, len(store))
	for _, r := range store {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := out[i].Weight(), out[j].Weight()
		if wi != wj {
			return wi > wj
		}
		return out[i].NumericID() < out[j].NumericID()
	})
	return out
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
