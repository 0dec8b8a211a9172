package characters

import "sort"

// Merge folds an update into an existing record in place. Dict sections
// shallow-merge with new values overwriting; list sections append with
// de-duplication by serialized form, which makes re-merging the same chapter
// update a no-op.
func Merge(existing, update *Record) {
	if update.Name != "" {
		existing.Name = update.Name
	}

	for _, p := range update.Basics {
		existing.Basics.Set(p.Key, p.Value)
	}
	for _, p := range update.Status {
		existing.Status.Set(p.Key, p.Value)
	}
	for _, p := range update.Faction {
		existing.Faction.Set(p.Key, p.Value)
	}

	seenLoc := make(map[string]bool, len(existing.Locations))
	for _, loc := range existing.Locations {
		seenLoc[locationKey(loc)] = true
	}
	for _, loc := range update.Locations {
		if !seenLoc[locationKey(loc)] {
			existing.Locations = append(existing.Locations, loc)
			seenLoc[locationKey(loc)] = true
		}
	}

	seenEv := make(map[string]bool, len(existing.Events))
	for _, ev := range existing.Events {
		seenEv[eventKey(ev)] = true
	}
	for _, ev := range update.Events {
		if !seenEv[eventKey(ev)] {
			existing.Events = append(existing.Events, ev)
			seenEv[eventKey(ev)] = true
		}
	}
	// Events are append-only but keep chapter order for readability.
	sort.SliceStable(existing.Events, func(i, j int) bool {
		return existing.Events[i].Chapter < existing.Events[j].Chapter
	})

	seenRel := make(map[string]bool, len(existing.Relations))
	for _, rel := range existing.Relations {
		seenRel[relationKey(rel)] = true
	}
	for _, rel := range update.Relations {
		if !seenRel[relationKey(rel)] {
			existing.Relations = append(existing.Relations, rel)
			seenRel[relationKey(rel)] = true
		}
	}

	existing.Items = appendUnique(existing.Items, update.Items)
	existing.Abilities = appendUnique(existing.Abilities, update.Abilities)

	for section, lines := range update.Extra {
		existing.Extra[section] = appendUnique(existing.Extra[section], lines)
	}
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}
