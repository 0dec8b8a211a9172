package characters

import (
	"strings"
	"testing"
)

const sampleBlock = `ID0001：赵谦
基础信息：
- 角色权重：85
- 别名：老赵、赵先生
生命状态：
- 身体：轻伤
- 心理：警惕
势力特征：
- 所属势力：青云门
位置轨迹：
- 北城 - 章节：第7章 - 状态：潜伏
关键事件记录：
- 第4章：[转折] 身份暴露
- 第7章：[冲突] 与灰衣人交手
关系网：
- 李默: 挚友,关系强度[80],互动频率[12]
持有物品：
- 神秘钥匙
技术能力：
- 剑法
隐藏背景：
- 曾是北境军人`

func TestParseBlock(t *testing.T) {
	r := ParseBlock(sampleBlock, nil)
	if r == nil {
		t.Fatal("expected record to parse")
	}

	if r.ID != "ID0001" || r.Name != "赵谦" {
		t.Errorf("unexpected header: %s %s", r.ID, r.Name)
	}
	if r.Weight() != 85 {
		t.Errorf("expected weight 85, got %d", r.Weight())
	}
	if r.Status.Get("心理") != "警惕" {
		t.Errorf("unexpected status: %+v", r.Status)
	}
	if r.FactionName() != "青云门" {
		t.Errorf("unexpected faction: %s", r.FactionName())
	}

	if len(r.Locations) != 1 || r.Locations[0].Chapter != 7 || r.Locations[0].Scene != "北城" {
		t.Errorf("unexpected locations: %+v", r.Locations)
	}
	if len(r.Events) != 2 || r.Events[0].Type != "转折" {
		t.Errorf("unexpected events: %+v", r.Events)
	}
	if len(r.Relations) != 1 {
		t.Fatalf("unexpected relations: %+v", r.Relations)
	}
	rel := r.Relations[0]
	if rel.Target != "李默" || rel.Strength != 80 || rel.Frequency != 12 {
		t.Errorf("unexpected relation: %+v", rel)
	}
	if len(r.Items) != 1 || r.Items[0] != "神秘钥匙" {
		t.Errorf("unexpected items: %+v", r.Items)
	}

	// Unknown section is kept, not dropped.
	if got := r.Extra["隐藏背景"]; len(got) != 1 || got[0] != "曾是北境军人" {
		t.Errorf("unknown section lost: %+v", r.Extra)
	}
}

func TestParseBlock_NoHeader(t *testing.T) {
	if r := ParseBlock("基础信息：\n- 角色权重：10", nil); r != nil {
		t.Error("expected nil for block without ID header")
	}
}

func TestParseBlock_UnmatchedLinesKept(t *testing.T) {
	block := `ID0002：李默
关键事件记录：
- 这一行没有章节标记
关系网：
- 赵谦：好友但缺少强度标记`

	r := ParseBlock(block, nil)
	if r == nil {
		t.Fatal("expected record")
	}
	if len(r.Events) != 0 || len(r.Relations) != 0 {
		t.Error("malformed lines must not become typed entries")
	}
	if len(r.Extra[SectionEvents]) != 1 || len(r.Extra[SectionRelations]) != 1 {
		t.Errorf("malformed lines must be kept untyped: %+v", r.Extra)
	}
}

func TestParseDocument(t *testing.T) {
	doc := sampleBlock + "\n---\nID0002：李默\n基础信息：\n- 角色权重：40\n"

	records := ParseDocument(doc, nil)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].ID != "ID0002" {
		t.Errorf("unexpected second record: %s", records[1].ID)
	}
}

func TestParseDocument_HeaderStartsNewBlock(t *testing.T) {
	// Model updates often omit the --- separator.
	doc := "ID0001：赵谦\n基础信息：\n- 角色权重：85\nID0002：李默\n基础信息：\n- 角色权重：40"

	records := ParseDocument(doc, nil)
	if len(records) != 2 {
		t.Fatalf("expected 2 records without separator, got %d", len(records))
	}
}

func TestRenderBlock_RoundTrip(t *testing.T) {
	r := ParseBlock(sampleBlock, nil)
	if r == nil {
		t.Fatal("expected record")
	}

	rendered := RenderBlock(r)
	again := ParseBlock(rendered, nil)
	if again == nil {
		t.Fatalf("rendered block does not re-parse:\n%s", rendered)
	}

	if RenderBlock(again) != rendered {
		t.Errorf("render is not stable:\n--- first ---\n%s\n--- second ---\n%s",
			rendered, RenderBlock(again))
	}
}

func TestRenderBlock_SectionOrder(t *testing.T) {
	r := NewRecord("ID0003", "王五")
	r.Abilities = append(r.Abilities, "医术")
	r.Basics.Set("角色权重", "30")

	rendered := RenderBlock(r)
	if strings.Index(rendered, SectionBasics) > strings.Index(rendered, SectionAbilities) {
		t.Errorf("sections out of order:\n%s", rendered)
	}
}
