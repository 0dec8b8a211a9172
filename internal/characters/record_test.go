package characters

import "testing"

func TestWeightTier(t *testing.T) {
	cases := []struct {
		weight int
		tier   string
		ok     bool
	}{
		{0, "", false},
		{-5, "", false},
		{101, "", false},
		{1, TierBackground, true},
		{20, TierBackground, true},
		{21, TierEpisodic, true},
		{40, TierEpisodic, true},
		{41, TierFunctional, true},
		{60, TierFunctional, true},
		{61, TierMajor, true},
		{80, TierMajor, true},
		{81, TierCore, true},
		{95, TierCore, true},
		{96, TierLead, true},
		{100, TierLead, true},
	}
	for _, c := range cases {
		tier, ok := WeightTier(c.weight)
		if tier != c.tier || ok != c.ok {
			t.Errorf("WeightTier(%d) = (%q, %v), want (%q, %v)", c.weight, tier, ok, c.tier, c.ok)
		}
	}
}

func TestRecord_Weight(t *testing.T) {
	r := NewRecord("ID0001", "赵谦")
	if r.Weight() != 0 {
		t.Errorf("expected 0 for missing weight, got %d", r.Weight())
	}

	r.Basics.Set("角色权重", "85")
	if r.Weight() != 85 {
		t.Errorf("expected 85, got %d", r.Weight())
	}

	r.Basics.Set("角色权重", "很高")
	if r.Weight() != 0 {
		t.Errorf("expected 0 for unparseable weight, got %d", r.Weight())
	}
}

func TestRecord_Aliases(t *testing.T) {
	r := NewRecord("ID0001", "赵谦")
	r.Basics.Set("别名", "老赵、赵先生，阿谦")

	aliases := r.Aliases()
	if len(aliases) != 3 {
		t.Fatalf("expected 3 aliases, got %v", aliases)
	}
	if aliases[0] != "老赵" || aliases[2] != "阿谦" {
		t.Errorf("unexpected aliases: %v", aliases)
	}
}

func TestRecord_LastSeenChapter(t *testing.T) {
	r := NewRecord("ID0001", "赵谦")
	if r.LastSeenChapter() != 0 {
		t.Error("expected 0 with no history")
	}

	r.Events = append(r.Events, Event{Chapter: 4, Type: "转折", Summary: "身份暴露"})
	r.Locations = append(r.Locations, Location{Scene: "北城", Chapter: 7})
	if r.LastSeenChapter() != 7 {
		t.Errorf("expected 7, got %d", r.LastSeenChapter())
	}
}

func TestRecord_CurrentLocation(t *testing.T) {
	r := NewRecord("ID0001", "赵谦")
	r.Locations = []Location{
		{Scene: "南镇", Chapter: 2},
		{Scene: "北城", Chapter: 7},
		{Scene: "旧宅", Chapter: 5},
	}
	if got := r.CurrentLocation(); got != "北城" {
		t.Errorf("expected 北城, got %s", got)
	}
}

func TestRecord_NumericID(t *testing.T) {
	r := NewRecord("ID0012", "某人")
	if r.NumericID() != 12 {
		t.Errorf("expected 12, got %d", r.NumericID())
	}
}

func TestFields_SetPreservesOrder(t *testing.T) {
	var f Fields
	f.Set("a", "1")
	f.Set("b", "2")
	f.Set("a", "3")

	if len(f) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(f))
	}
	if f[0].Key != "a" || f[0].Value != "3" {
		t.Errorf("expected a updated in place, got %+v", f[0])
	}
}
