package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inkwell-ai/inkwell/internal/blueprint"
	"github.com/inkwell-ai/inkwell/internal/config"
	"github.com/inkwell-ai/inkwell/internal/home"
	"github.com/inkwell-ai/inkwell/internal/polling"
	"github.com/inkwell-ai/inkwell/internal/prompts"
	"github.com/inkwell-ai/inkwell/internal/providers"
)

type testEnv struct {
	pipe    *Pipeline
	project *home.Project
	mock    *providers.MockClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	project, err := home.NewProject(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := project.EnsureExists(); err != nil {
		t.Fatal(err)
	}

	mock := providers.NewMockClient()
	registry := providers.NewRegistry(providers.RegistryConfig{}, slog.Default())
	registry.Register(mock)

	executor := polling.NewExecutor(registry,
		polling.Options{Mode: polling.ModeSingle, Primary: mock.Name()}, nil, slog.Default())
	resolver := prompts.NewResolver("", slog.Default())

	gen := config.GenerationConfig{
		MaxOutputTokens:        8192,
		RecentBlueprintEntries: 100,
		PromptTokenBudget:      16000,
		CharacterWeightMin:     60,
		CharacterRecencyWindow: 20,
	}
	return &testEnv{
		pipe:    New(project, resolver, executor, gen, nil, slog.Default()),
		project: project,
		mock:    mock,
	}
}

func (env *testEnv) writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

// scriptResponses makes the mock return the scripted texts in order, failing
// once the script runs out.
func (env *testEnv) scriptResponses(texts ...string) {
	i := 0
	env.mock.ResponseFn = func(req *providers.ChatRequest) (string, error) {
		if i >= len(texts) {
			return "", fmt.Errorf("unexpected request %d", i+1)
		}
		text := texts[i]
		i++
		return text, nil
	}
}

const testArchitecture = "核心冲突：双线争夺遗物。"

const testOutline = `#=== 第1卷　风起　第1章 至 第3章 ===
- 本卷主线：初入江湖。`

func chapterBlock(chapter int, foreshadowLine string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "第%d章　章题%d\n", chapter, chapter)
	b.WriteString("├─定位：推进\n")
	if foreshadowLine != "" {
		b.WriteString("├─伏笔条目：\n")
		b.WriteString("│ " + foreshadowLine + "\n")
	}
	fmt.Fprintf(&b, "└─本章简述：第%d章概要。", chapter)
	return b.String()
}

func TestGenerateArchitecture(t *testing.T) {
	params := ArchitectureParams{Topic: "遗物", Genre: "武侠", TotalChapters: 30, WordCount: 100000}

	t.Run("full chain", func(t *testing.T) {
		env := newTestEnv(t)
		env.scriptResponses("种子", "角色", "世界", "情节", "汇总文档")

		if err := env.pipe.GenerateArchitecture(context.Background(), params); err != nil {
			t.Fatal(err)
		}
		if env.mock.RequestCount() != 5 {
			t.Errorf("expected 5 stage calls, got %d", env.mock.RequestCount())
		}

		data, err := os.ReadFile(env.project.ArchitecturePath())
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "汇总文档") {
			t.Errorf("architecture document missing assembly output: %q", data)
		}
		if _, err := os.Stat(env.project.ArchCheckpointPath()); !os.IsNotExist(err) {
			t.Error("checkpoint must be removed after the document is saved")
		}
	})

	t.Run("failure preserves checkpoint", func(t *testing.T) {
		env := newTestEnv(t)
		calls := 0
		env.mock.ResponseFn = func(req *providers.ChatRequest) (string, error) {
			calls++
			if calls == 3 {
				return "", errors.New("model unavailable")
			}
			return fmt.Sprintf("阶段%d", calls), nil
		}

		if err := env.pipe.GenerateArchitecture(context.Background(), params); err == nil {
			t.Fatal("expected error from stage 3")
		}

		data, err := os.ReadFile(env.project.ArchCheckpointPath())
		if err != nil {
			t.Fatal("checkpoint must survive a mid-chain failure")
		}
		var cp struct {
			CoreSeed          string `json:"core_seed"`
			CharacterDynamics string `json:"character_dynamics"`
			WorldBuilding     string `json:"world_building"`
		}
		if err := json.Unmarshal(data, &cp); err != nil {
			t.Fatal(err)
		}
		if cp.CoreSeed == "" || cp.CharacterDynamics == "" || cp.WorldBuilding != "" {
			t.Errorf("unexpected checkpoint state: %+v", cp)
		}
	})

	t.Run("resumes from checkpoint", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile(t, env.project.ArchCheckpointPath(),
			`{"core_seed": "已有种子", "character_dynamics": "已有角色"}`)
		env.scriptResponses("世界", "情节", "汇总")

		if err := env.pipe.GenerateArchitecture(context.Background(), params); err != nil {
			t.Fatal(err)
		}
		if env.mock.RequestCount() != 3 {
			t.Errorf("completed stages must be skipped, got %d calls", env.mock.RequestCount())
		}
	})

	t.Run("corrupt checkpoint restarts chain", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile(t, env.project.ArchCheckpointPath(), `{"core_seed": 42}`)
		env.scriptResponses("种子", "角色", "世界", "情节", "汇总")

		if err := env.pipe.GenerateArchitecture(context.Background(), params); err != nil {
			t.Fatal(err)
		}
		if env.mock.RequestCount() != 5 {
			t.Errorf("invalid checkpoint must restart the chain, got %d calls", env.mock.RequestCount())
		}
	})
}

func TestGenerateVolumeOutline(t *testing.T) {
	t.Run("batched with resumption", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile(t, env.project.ArchitecturePath(), testArchitecture)
		env.scriptResponses(
			"#=== 第1卷　第1章 至 第10章 ===\n大纲一\n"+
				"#=== 第2卷　第11章 至 第20章 ===\n大纲二\n"+
				"#=== 第3卷　第21章 至 第30章 ===\n大纲三\n"+
				"#=== 第4卷　第31章 至 第40章 ===\n大纲四",
			"#=== 第5卷　第41章 至 第50章 ===\n大纲五\n"+
				"#=== 第6卷　第51章 至 第60章 ===\n大纲六",
		)

		params := VolumeParams{TotalChapters: 60, TotalVolumes: 6}
		if err := env.pipe.GenerateVolumeOutline(context.Background(), params); err != nil {
			t.Fatal(err)
		}
		if env.mock.RequestCount() != 2 {
			t.Errorf("expected 2 batch calls, got %d", env.mock.RequestCount())
		}

		outline, err := os.ReadFile(env.project.VolumeOutlinePath())
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(outline), "第6卷") {
			t.Errorf("outline incomplete:\n%s", outline)
		}

		// Re-running is a no-op once every volume exists.
		if err := env.pipe.GenerateVolumeOutline(context.Background(), params); err != nil {
			t.Fatal(err)
		}
		if env.mock.RequestCount() != 2 {
			t.Errorf("complete outline must not trigger calls, got %d", env.mock.RequestCount())
		}
	})

	t.Run("requires architecture", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.pipe.GenerateVolumeOutline(context.Background(), VolumeParams{TotalChapters: 60, TotalVolumes: 6})
		if err == nil {
			t.Error("expected error without architecture document")
		}
	})

	t.Run("rejects output without headers", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile(t, env.project.ArchitecturePath(), testArchitecture)
		env.mock.ResponseText = "这段输出没有任何卷头"

		err := env.pipe.GenerateVolumeOutline(context.Background(), VolumeParams{TotalChapters: 60, TotalVolumes: 6})
		if err == nil {
			t.Fatal("expected error for unparseable batch")
		}
		if _, statErr := os.Stat(env.project.VolumeOutlinePath()); !os.IsNotExist(statErr) {
			t.Error("unparseable output must not be appended")
		}
	})
}

func TestGenerateBlueprints(t *testing.T) {
	t.Run("single batch covers the volume", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile(t, env.project.ArchitecturePath(), testArchitecture)
		env.writeFile(t, env.project.VolumeOutlinePath(), testOutline)
		env.scriptResponses(strings.Join([]string{
			chapterBlock(1, "MF001(主线伏笔)-神秘钥匙-埋设-钥匙出现在地窖（第3章前必须回收）"),
			chapterBlock(2, ""),
			chapterBlock(3, "MF001(主线伏笔)-神秘钥匙-回收-钥匙打开石门"),
		}, "\n\n"))

		if err := env.pipe.GenerateBlueprints(context.Background(), BlueprintParams{TotalChapters: 3}); err != nil {
			t.Fatal(err)
		}
		if env.mock.RequestCount() != 1 {
			t.Errorf("expected 1 chunk call, got %d", env.mock.RequestCount())
		}

		dir := blueprint.Parse(string(mustRead(t, env.project.DirectoryPath())), nil)
		if dir.LastChapter() != 3 {
			t.Errorf("expected last chapter 3, got %d", dir.LastChapter())
		}

		entries := env.pipe.Foreshadowing().Load()
		e, ok := entries["MF001"]
		if !ok {
			t.Fatal("foreshadowing mention not merged into the tracker")
		}
		if !e.Resolved {
			t.Error("recycled thread must be resolved")
		}
	})

	t.Run("resumes chunk by chunk", func(t *testing.T) {
		env := newTestEnv(t)
		env.pipe.gen.MaxOutputTokens = 1000 // one chapter per chunk
		env.writeFile(t, env.project.ArchitecturePath(), testArchitecture)
		env.writeFile(t, env.project.VolumeOutlinePath(), testOutline)

		next := 1
		env.mock.ResponseFn = func(req *providers.ChatRequest) (string, error) {
			block := chapterBlock(next, "")
			next++
			return block, nil
		}

		// First invocation stops after one chunk, as a stepwise run would.
		if err := env.pipe.GenerateBlueprints(context.Background(), BlueprintParams{TotalChapters: 3, SingleBatch: true}); err != nil {
			t.Fatal(err)
		}
		dir := blueprint.Parse(string(mustRead(t, env.project.DirectoryPath())), nil)
		if dir.LastChapter() != 1 {
			t.Fatalf("expected 1 chapter after single batch, got %d", dir.LastChapter())
		}

		// The next invocation picks up from disk and finishes the rest.
		if err := env.pipe.GenerateBlueprints(context.Background(), BlueprintParams{TotalChapters: 3}); err != nil {
			t.Fatal(err)
		}
		dir = blueprint.Parse(string(mustRead(t, env.project.DirectoryPath())), nil)
		if dir.LastChapter() != 3 {
			t.Errorf("expected 3 chapters after resume, got %d", dir.LastChapter())
		}
		if env.mock.RequestCount() != 3 {
			t.Errorf("expected 3 chunk calls total, got %d", env.mock.RequestCount())
		}
	})

	t.Run("requires architecture", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.pipe.GenerateBlueprints(context.Background(), BlueprintParams{TotalChapters: 3}); err == nil {
			t.Error("expected error without architecture document")
		}
	})

	t.Run("rejects output without chapter blocks", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile(t, env.project.ArchitecturePath(), testArchitecture)
		env.writeFile(t, env.project.VolumeOutlinePath(), testOutline)
		env.mock.ResponseText = "这段输出没有章节块"

		if err := env.pipe.GenerateBlueprints(context.Background(), BlueprintParams{TotalChapters: 3}); err == nil {
			t.Fatal("expected error for unparseable chunk")
		}
		if _, err := os.Stat(env.project.DirectoryPath()); !os.IsNotExist(err) {
			t.Error("unparseable output must not be appended")
		}
	})
}

func TestFinalizeChapter(t *testing.T) {
	t.Run("full flow", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile(t, env.project.ChapterPath(1), "第一章正文。赵谦抵达北城。")
		env.writeFile(t, env.project.DirectoryPath(),
			chapterBlock(1, "MF001(主线伏笔)-神秘钥匙-埋设-钥匙出现在地窖（第3章前必须回收）"))

		env.scriptResponses(
			"赵谦抵达北城，拿到钥匙。",
			"ID0001：赵谦\n基础信息：\n- 角色权重：85\n关键事件记录：\n- 第1章：[初登场] 抵达北城",
			"全局：故事从北城开始。",
		)

		if err := env.pipe.FinalizeChapter(context.Background(), 1); err != nil {
			t.Fatal(err)
		}
		if env.mock.RequestCount() != 3 {
			t.Errorf("expected summary, character and global calls, got %d", env.mock.RequestCount())
		}

		records := env.pipe.Characters().Load()
		r, ok := records["ID0001"]
		if !ok {
			t.Fatal("character update not persisted")
		}
		if r.Name != "赵谦" || r.Weight() != 85 {
			t.Errorf("unexpected record: name=%q weight=%d", r.Name, r.Weight())
		}

		if _, ok := env.pipe.Foreshadowing().Load()["MF001"]; !ok {
			t.Error("blueprint foreshadowing not rescanned")
		}

		global := string(mustRead(t, env.project.GlobalSummaryPath()))
		if !strings.Contains(global, "北城") {
			t.Errorf("global summary not written: %q", global)
		}
	})

	t.Run("missing prose", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.pipe.FinalizeChapter(context.Background(), 7); err == nil {
			t.Error("expected error for missing chapter file")
		}
		if env.mock.RequestCount() != 0 {
			t.Error("no model calls without prose")
		}
	})
}

func TestAppendDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")

	if err := appendDocument(path, "第一段\n"); err != nil {
		t.Fatal(err)
	}
	if err := appendDocument(path, "\n第二段"); err != nil {
		t.Fatal(err)
	}

	text := string(mustRead(t, path))
	if !strings.Contains(text, "第一段\n\n\n第二段\n") {
		t.Errorf("blocks must stay blank-line separated: %q", text)
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
