package foreshadow

import (
	"testing"
)

func TestParseMentionLine(t *testing.T) {
	t.Run("full mention with deadline", func(t *testing.T) {
		m, ok := ParseMentionLine("MF001(主线伏笔)-神秘钥匙-埋设-钥匙出现在地窖（第20章前必须回收）")
		if !ok {
			t.Fatal("expected mention to parse")
		}
		if m.ID != "MF001" {
			t.Errorf("expected MF001, got %s", m.ID)
		}
		if m.Title != "神秘钥匙" {
			t.Errorf("expected 神秘钥匙, got %s", m.Title)
		}
		if m.Action != ActionPlant {
			t.Errorf("expected 埋设, got %s", m.Action)
		}
		if m.Content != "钥匙出现在地窖" {
			t.Errorf("expected deadline stripped from content, got %q", m.Content)
		}
		if m.DeadlineChapter != 20 {
			t.Errorf("expected deadline 20, got %d", m.DeadlineChapter)
		}
	})

	t.Run("full-width parentheses", func(t *testing.T) {
		m, ok := ParseMentionLine("AF002（暗线伏笔）-灰衣人-触发-再次现身")
		if !ok {
			t.Fatal("expected mention to parse")
		}
		if m.DeclaredType != "暗线伏笔" {
			t.Errorf("expected declared type 暗线伏笔, got %s", m.DeclaredType)
		}
	})

	t.Run("content keeps interior dashes", func(t *testing.T) {
		m, ok := ParseMentionLine("YF003(一般伏笔)-旧照片-强化-照片背面写着A-B-C")
		if !ok {
			t.Fatal("expected mention to parse")
		}
		if m.Content != "照片背面写着A-B-C" {
			t.Errorf("content lost dashes: %q", m.Content)
		}
	})

	t.Run("unknown prefix rejected", func(t *testing.T) {
		if _, ok := ParseMentionLine("XX001(伏笔)-标题-埋设-内容"); ok {
			t.Error("expected unknown prefix to fail")
		}
	})

	t.Run("missing action rejected", func(t *testing.T) {
		if _, ok := ParseMentionLine("MF001(主线伏笔)-只有标题"); ok {
			t.Error("expected mention without action to fail")
		}
	})
}

func TestExtractMentions(t *testing.T) {
	text := `第12章　暗潮
├─定位：过渡章
├─伏笔条目：
│ MF001(主线伏笔)-神秘钥匙-埋设-钥匙出现在地窖（第20章前必须回收）
│ - AF002(暗线伏笔)-灰衣人-触发-灰衣人再次现身
│ 这一行不是合法的伏笔条目
├─颠覆指数：3
└─本章简述：MF999(主线伏笔)-不该被提取-埋设-在伏笔条目之外`

	mentions := ExtractMentions(text, nil)
	if len(mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d: %+v", len(mentions), mentions)
	}
	if mentions[0].ID != "MF001" || mentions[1].ID != "AF002" {
		t.Errorf("unexpected ids: %s, %s", mentions[0].ID, mentions[1].ID)
	}
}

func TestExtractMentions_LabelLineCarriesMention(t *testing.T) {
	text := `第3章　开端
├─伏笔条目：MF003(主线伏笔)-残卷-埋设-残卷只剩一半
└─本章简述：开端`

	mentions := ExtractMentions(text, nil)
	if len(mentions) != 1 || mentions[0].ID != "MF003" {
		t.Fatalf("expected MF003 from label line, got %+v", mentions)
	}
}

func TestExtractMentions_SectionEndsAtChapterHeader(t *testing.T) {
	text := `第5章　线索
├─伏笔条目：
│ SF004(支线伏笔)-赌约-埋设-赌约立下
第6章　延续
CF005(人物伏笔)-旧伤-触发-旧伤复发`

	mentions := ExtractMentions(text, nil)
	if len(mentions) != 1 || mentions[0].ID != "SF004" {
		t.Fatalf("expected only SF004, got %+v", mentions)
	}
}

func TestMerge(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		store := make(map[string]*Entry)
		mentions := []Mention{{
			ID: "MF001", Title: "神秘钥匙", Action: ActionPlant,
			Content: "钥匙出现在地窖", DeadlineChapter: 20,
		}}

		Merge(store, 3, mentions, nil)
		Merge(store, 3, mentions, nil)

		e := store["MF001"]
		if e == nil {
			t.Fatal("expected entry MF001")
		}
		if len(e.States) != 1 {
			t.Errorf("expected 1 state after re-merge, got %d", len(e.States))
		}
		if e.Content != "钥匙出现在地窖" {
			t.Errorf("content duplicated: %q", e.Content)
		}
	})

	t.Run("resolve marks entry resolved", func(t *testing.T) {
		store := make(map[string]*Entry)
		Merge(store, 3, []Mention{{ID: "MF001", Title: "钥匙", Action: ActionPlant}}, nil)
		Merge(store, 9, []Mention{{ID: "MF001", Title: "钥匙", Action: ActionResolve, Content: "钥匙打开暗门"}}, nil)

		e := store["MF001"]
		if !e.Resolved {
			t.Error("expected entry to be resolved")
		}
		if len(e.States) != 2 {
			t.Errorf("expected 2 states, got %d", len(e.States))
		}
	})

	t.Run("first non-plant action gets implicit planting", func(t *testing.T) {
		store := make(map[string]*Entry)
		Merge(store, 5, []Mention{{ID: "CF005", Title: "旧伤", Action: ActionTrigger}}, nil)

		e := store["CF005"]
		if len(e.States) != 2 {
			t.Fatalf("expected implicit plant + trigger, got %d states", len(e.States))
		}
		if e.States[0] != (State{Action: ActionPlant, Chapter: 5}) {
			t.Errorf("expected implicit plant at chapter 5, got %+v", e.States[0])
		}
	})

	t.Run("id prefix beats declared type", func(t *testing.T) {
		store := make(map[string]*Entry)
		Merge(store, 2, []Mention{{ID: "AF009", DeclaredType: "主线伏笔", Title: "误标", Action: ActionPlant}}, nil)

		if store["AF009"].Type != TypeHidden {
			t.Errorf("expected AF from prefix, got %s", store["AF009"].Type)
		}
	})

	t.Run("deadline backfills only once", func(t *testing.T) {
		store := make(map[string]*Entry)
		Merge(store, 2, []Mention{{ID: "MF002", Title: "盟约", Action: ActionPlant, DeadlineChapter: 15}}, nil)
		Merge(store, 4, []Mention{{ID: "MF002", Title: "盟约", Action: ActionReinforce, DeadlineChapter: 30}}, nil)

		if store["MF002"].DeadlineChapter != 15 {
			t.Errorf("expected deadline 15 kept, got %d", store["MF002"].DeadlineChapter)
		}
	})

	t.Run("new content extends existing", func(t *testing.T) {
		store := make(map[string]*Entry)
		Merge(store, 2, []Mention{{ID: "YF001", Title: "照片", Action: ActionPlant, Content: "照片泛黄"}}, nil)
		Merge(store, 6, []Mention{{ID: "YF001", Title: "照片", Action: ActionTrigger, Content: "背面有字"}}, nil)

		if got := store["YF001"].Content; got != "照片泛黄；背面有字" {
			t.Errorf("unexpected merged content: %q", got)
		}
	})
}
