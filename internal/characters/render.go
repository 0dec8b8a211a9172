package characters

import (
	"fmt"
	"sort"
	"strings"
)

// sectionOrder fixes the canonical block layout. Unknown sections render
// after the known ones, sorted by name.
var sectionOrder = []string{
	SectionBasics,
	SectionStatus,
	SectionFaction,
	SectionLocations,
	SectionEvents,
	SectionRelations,
	SectionItems,
	SectionAbilities,
}

// RenderBlock serializes a record into its canonical block form. Full-width
// colons throughout; this matches existing project files.
func RenderBlock(r *Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s：%s\n", r.ID, r.Name)

	writeDict := func(name string, fields Fields) {
		if len(fields) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s：\n", name)
		for _, p := range fields {
			fmt.Fprintf(&b, "- %s：%s\n", p.Key, p.Value)
		}
	}
	writeList := func(name string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s：\n", name)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	writeDict(SectionBasics, r.Basics)
	writeDict(SectionStatus, r.Status)
	writeDict(SectionFaction, r.Faction)

	if len(r.Locations) > 0 {
		fmt.Fprintf(&b, "%s：\n", SectionLocations)
		for _, loc := range r.Locations {
			fmt.Fprintf(&b, "- %s\n", RenderLocation(loc))
		}
	}
	if len(r.Events) > 0 {
		fmt.Fprintf(&b, "%s：\n", SectionEvents)
		for _, ev := range r.Events {
			fmt.Fprintf(&b, "- 第%d章：[%s] %s\n", ev.Chapter, ev.Type, ev.Summary)
		}
	}
	if len(r.Relations) > 0 {
		fmt.Fprintf(&b, "%s：\n", SectionRelations)
		for _, rel := range r.Relations {
			fmt.Fprintf(&b, "- %s: %s,关系强度[%d],互动频率[%d]\n",
				rel.Target, rel.Relation, rel.Strength, rel.Frequency)
		}
	}
	writeList(SectionItems, r.Items)
	writeList(SectionAbilities, r.Abilities)

	extraNames := make([]string, 0, len(r.Extra))
	for name := range r.Extra {
		extraNames = append(extraNames, name)
	}
	sort.Strings(extraNames)
	for _, name := range extraNames {
		fmt.Fprintf(&b, "%s：\n", name)
		for _, line := range r.Extra[name] {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderLocation serializes one location trajectory line body.
func RenderLocation(loc Location) string {
	parts := []string{loc.Scene}
	if loc.Chapter > 0 {
		parts = append(parts, fmt.Sprintf("章节：第%d章", loc.Chapter))
	}
	for _, p := range loc.Extra {
		if p.Key == "" {
			parts = append(parts, p.Value)
		} else {
			parts = append(parts, fmt.Sprintf("%s：%s", p.Key, p.Value))
		}
	}
	return strings.Join(parts, " - ")
}

// eventKey, relationKey and locationKey give the serialized identity used by
// list de-duplication during merges.
func eventKey(ev Event) string {
	return fmt.Sprintf("第%d章：[%s] %s", ev.Chapter, ev.Type, ev.Summary)
}

func relationKey(rel Relation) string {
	return fmt.Sprintf("%s: %s,关系强度[%d],互动频率[%d]",
		rel.Target, rel.Relation, rel.Strength, rel.Frequency)
}

func locationKey(loc Location) string {
	return RenderLocation(loc)
}
