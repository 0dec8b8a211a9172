package home

import (
	"fmt"
	"os"
	"path/filepath"
)

// File names inside a project directory. These match the on-disk layout of
// existing user projects, so they are load-bearing: renaming one is a
// breaking format migration.
const (
	ArchitectureFileName    = "Novel_architecture.txt"
	DirectoryFileName       = "Novel_directory.txt"
	VolumeOutlineFileName   = "Volume_outline.txt"
	GlobalSummaryFileName   = "global_summary.txt"
	ArchCheckpointFileName  = "partial_architecture.json"
	ChaptersDirName         = "chapters"
	PromptOverridesDirName  = "prompts"
	LogsDirName             = "logs"
	RunLogFileName          = "run.log"
	CollectionsDirName      = "collections"
)

// Project is the filesystem layout of one novel project. All narrative state
// (architecture, volume outline, chapter directory, character and
// foreshadowing stores, finalized chapters) lives under its root.
type Project struct {
	root string
}

// NewProject creates a Project rooted at path.
func NewProject(path string) (*Project, error) {
	if path == "" {
		return nil, fmt.Errorf("project path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}
	return &Project{root: abs}, nil
}

// Root returns the project root path.
func (p *Project) Root() string {
	return p.root
}

// ArchitecturePath returns the path of the novel architecture document.
func (p *Project) ArchitecturePath() string {
	return filepath.Join(p.root, ArchitectureFileName)
}

// DirectoryPath returns the path of the chapter directory (blueprint) document.
func (p *Project) DirectoryPath() string {
	return filepath.Join(p.root, DirectoryFileName)
}

// VolumeOutlinePath returns the path of the volume outline document.
func (p *Project) VolumeOutlinePath() string {
	return filepath.Join(p.root, VolumeOutlineFileName)
}

// GlobalSummaryPath returns the path of the rolling global summary.
func (p *Project) GlobalSummaryPath() string {
	return filepath.Join(p.root, GlobalSummaryFileName)
}

// ArchCheckpointPath returns the path of the architecture generation checkpoint.
func (p *Project) ArchCheckpointPath() string {
	return filepath.Join(p.root, ArchCheckpointFileName)
}

// CollectionsPath returns the directory that holds the text-block stores.
func (p *Project) CollectionsPath() string {
	return filepath.Join(p.root, CollectionsDirName)
}

// ChapterPath returns the path of a finalized chapter's prose file.
func (p *Project) ChapterPath(chapter int) string {
	return filepath.Join(p.root, ChaptersDirName, fmt.Sprintf("chapter_%d.txt", chapter))
}

// PromptOverridesPath returns the directory holding per-project prompt overrides.
func (p *Project) PromptOverridesPath() string {
	return filepath.Join(p.root, PromptOverridesDirName)
}

// RunLogPath returns the path of the append-only run log.
func (p *Project) RunLogPath() string {
	return filepath.Join(p.root, LogsDirName, RunLogFileName)
}

// EnsureExists creates the project directory tree if it doesn't exist.
func (p *Project) EnsureExists() error {
	for _, dir := range []string{
		p.root,
		p.CollectionsPath(),
		filepath.Join(p.root, ChaptersDirName),
		p.PromptOverridesPath(),
		filepath.Join(p.root, LogsDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create project directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the project root exists.
func (p *Project) Exists() bool {
	_, err := os.Stat(p.root)
	return err == nil
}
