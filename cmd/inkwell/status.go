package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/inkwell-ai/inkwell/internal/blueprint"
	"github.com/inkwell-ai/inkwell/internal/characters"
	"github.com/inkwell-ai/inkwell/internal/foreshadow"
	"github.com/inkwell-ai/inkwell/internal/planner"
)

var statusOutput string

// projectStatus is the serialized report of one project's generation state.
type projectStatus struct {
	Project      string `yaml:"project" json:"project"`
	Architecture bool   `yaml:"architecture" json:"architecture"`

	Volumes struct {
		Count       int `yaml:"count" json:"count"`
		LastChapter int `yaml:"last_chapter" json:"last_chapter"`
	} `yaml:"volumes" json:"volumes"`

	Blueprint struct {
		Chapters             int  `yaml:"chapters" json:"chapters"`
		LastChapter          int  `yaml:"last_chapter" json:"last_chapter"`
		CurrentVolume        int  `yaml:"current_volume" json:"current_volume"`
		VolumeFullyGenerated bool `yaml:"volume_fully_generated" json:"volume_fully_generated"`
	} `yaml:"blueprint" json:"blueprint"`

	Foreshadowing struct {
		Total      int `yaml:"total" json:"total"`
		Unresolved int `yaml:"unresolved" json:"unresolved"`
		Overdue    int `yaml:"overdue" json:"overdue"`
	} `yaml:"foreshadowing" json:"foreshadowing"`

	Characters struct {
		Total  int `yaml:"total" json:"total"`
		Core   int `yaml:"core" json:"core"`
		Active int `yaml:"active" json:"active"`
	} `yaml:"characters" json:"characters"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the project's generation state",
	Long: `Summarize a project's on-disk state: architecture presence, volume outline
coverage, blueprint progress, foreshadowing counts and the character index.

Examples:
  inkwell status
  inkwell status -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		var (
			entries   map[string]*foreshadow.Entry
			records   map[string]*characters.Record
			directory *blueprint.Directory
			ranges    []planner.VolumeRange
		)

		var g errgroup.Group
		g.Go(func() error {
			entries = a.pipeline.Foreshadowing().Load()
			return nil
		})
		g.Go(func() error {
			records = a.pipeline.Characters().Load()
			return nil
		})
		g.Go(func() error {
			data, err := os.ReadFile(a.project.DirectoryPath())
			if err != nil && !os.IsNotExist(err) {
				return err
			}
			directory = blueprint.Parse(string(data), a.logger)
			return nil
		})
		g.Go(func() error {
			data, err := os.ReadFile(a.project.VolumeOutlinePath())
			if err != nil && !os.IsNotExist(err) {
				return err
			}
			ranges = planner.ParseVolumeRanges(string(data), a.logger)
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		var st projectStatus
		st.Project = a.project.Root()
		_, err = os.Stat(a.project.ArchitecturePath())
		st.Architecture = err == nil

		st.Volumes.Count = len(ranges)
		for _, r := range ranges {
			if r.EndChapter > st.Volumes.LastChapter {
				st.Volumes.LastChapter = r.EndChapter
			}
		}

		st.Blueprint.Chapters = len(directory.Entries())
		st.Blueprint.LastChapter = directory.LastChapter()
		if progress, err := planner.ComputeProgress(directory.ChapterNumbers(), ranges); err == nil {
			st.Blueprint.CurrentVolume = progress.CurrentVolume
			st.Blueprint.VolumeFullyGenerated = progress.VolumeFullyGenerated
		}

		st.Foreshadowing.Total = len(entries)
		st.Foreshadowing.Unresolved = len(foreshadow.Unresolved(entries))
		st.Foreshadowing.Overdue = len(foreshadow.OverdueUnresolved(entries, directory.LastChapter()))

		summary := characters.Summarize(records)
		st.Characters.Total = summary.Total
		st.Characters.Core = summary.CoreCount
		st.Characters.Active = summary.ActiveCount

		return printStatus(st)
	},
}

func printStatus(st projectStatus) error {
	switch statusOutput {
	case "json":
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	default:
		data, err := yaml.Marshal(st)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	}
	return nil
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(statusCmd)
}
