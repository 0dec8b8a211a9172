package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/inkwell-ai/inkwell/internal/prompts"
)

// ArchitectureParams seeds the staged architecture chain.
type ArchitectureParams struct {
	Topic         string
	Genre         string
	TotalChapters int
	WordCount     int
	UserGuidance  string
}

// archCheckpoint is the resumable state of the architecture chain, persisted
// after every completed stage. Stage order is fixed: a field is only ever set
// after all fields before it.
type archCheckpoint struct {
	CoreSeed          string `json:"core_seed,omitempty"`
	CharacterDynamics string `json:"character_dynamics,omitempty"`
	WorldBuilding     string `json:"world_building,omitempty"`
	PlotArchitecture  string `json:"plot_architecture,omitempty"`
}

// archCheckpointSchema validates the checkpoint file on load. A checkpoint
// that fails validation is discarded and the chain restarts from the top;
// restarting a cheap stage beats resuming from corrupt state.
const archCheckpointSchema = `{
	"type": "object",
	"properties": {
		"core_seed": {"type": "string"},
		"character_dynamics": {"type": "string"},
		"world_building": {"type": "string"},
		"plot_architecture": {"type": "string"}
	},
	"additionalProperties": false
}`

var compiledArchSchema = jsonschema.MustCompileString("arch_checkpoint.json", archCheckpointSchema)

// GenerateArchitecture runs the five-stage architecture chain: core seed,
// character dynamics, world building, plot architecture, assembly. Each
// stage's output is checkpointed to disk so an interrupted run resumes at the
// first incomplete stage. The checkpoint is removed only after the assembled
// document has been saved.
func (p *Pipeline) GenerateArchitecture(ctx context.Context, params ArchitectureParams) error {
	if params.TotalChapters <= 0 {
		return fmt.Errorf("total chapters must be positive, got %d", params.TotalChapters)
	}

	cp := p.loadArchCheckpoint()

	if cp.CoreSeed == "" {
		text, err := p.runStep(ctx, "核心种子", prompts.KeyArchCoreSeed, map[string]any{
			"Topic":         params.Topic,
			"Genre":         params.Genre,
			"TotalChapters": params.TotalChapters,
			"WordCount":     params.WordCount,
			"UserGuidance":  params.UserGuidance,
		})
		if err != nil {
			return err
		}
		cp.CoreSeed = strings.TrimSpace(text)
		if err := p.saveArchCheckpoint(cp); err != nil {
			return err
		}
	}

	if cp.CharacterDynamics == "" {
		text, err := p.runStep(ctx, "角色动力学", prompts.KeyArchCharacters, map[string]any{
			"CoreSeed": cp.CoreSeed,
		})
		if err != nil {
			return err
		}
		cp.CharacterDynamics = strings.TrimSpace(text)
		if err := p.saveArchCheckpoint(cp); err != nil {
			return err
		}
	}

	if cp.WorldBuilding == "" {
		text, err := p.runStep(ctx, "世界观", prompts.KeyArchWorld, map[string]any{
			"CoreSeed":          cp.CoreSeed,
			"CharacterDynamics": cp.CharacterDynamics,
		})
		if err != nil {
			return err
		}
		cp.WorldBuilding = strings.TrimSpace(text)
		if err := p.saveArchCheckpoint(cp); err != nil {
			return err
		}
	}

	if cp.PlotArchitecture == "" {
		text, err := p.runStep(ctx, "情节架构", prompts.KeyArchPlot, map[string]any{
			"CoreSeed":          cp.CoreSeed,
			"CharacterDynamics": cp.CharacterDynamics,
			"WorldBuilding":     cp.WorldBuilding,
		})
		if err != nil {
			return err
		}
		cp.PlotArchitecture = strings.TrimSpace(text)
		if err := p.saveArchCheckpoint(cp); err != nil {
			return err
		}
	}

	assembled, err := p.runStep(ctx, "架构汇总", prompts.KeyArchAssembly, map[string]any{
		"CoreSeed":          cp.CoreSeed,
		"CharacterDynamics": cp.CharacterDynamics,
		"WorldBuilding":     cp.WorldBuilding,
		"PlotArchitecture":  cp.PlotArchitecture,
	})
	if err != nil {
		return err
	}

	if err := writeDocument(p.project.ArchitecturePath(), assembled); err != nil {
		return err
	}
	if err := os.Remove(p.project.ArchCheckpointPath()); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove architecture checkpoint", "error", err)
	}

	p.sink.Line("小说架构生成完成")
	p.logger.Info("architecture generated", "path", p.project.ArchitecturePath())
	return nil
}

// loadArchCheckpoint reads and validates the checkpoint file. Any failure
// degrades to an empty checkpoint with a warning.
func (p *Pipeline) loadArchCheckpoint() archCheckpoint {
	var cp archCheckpoint

	data, err := os.ReadFile(p.project.ArchCheckpointPath())
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.Warn("failed to read architecture checkpoint", "error", err)
		}
		return cp
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		p.logger.Warn("architecture checkpoint is not valid JSON, restarting chain", "error", err)
		return archCheckpoint{}
	}
	if err := compiledArchSchema.Validate(doc); err != nil {
		p.logger.Warn("architecture checkpoint failed validation, restarting chain", "error", err)
		return archCheckpoint{}
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		p.logger.Warn("failed to decode architecture checkpoint", "error", err)
		return archCheckpoint{}
	}

	p.logger.Info("resuming architecture chain from checkpoint",
		"core_seed", cp.CoreSeed != "",
		"character_dynamics", cp.CharacterDynamics != "",
		"world_building", cp.WorldBuilding != "",
		"plot_architecture", cp.PlotArchitecture != "")
	return cp
}

func (p *Pipeline) saveArchCheckpoint(cp archCheckpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode architecture checkpoint: %w", err)
	}
	if err := os.WriteFile(p.project.ArchCheckpointPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write architecture checkpoint: %w", err)
	}
	return nil
}
