package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/config"
	"github.com/inkwell-ai/inkwell/internal/home"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the inkwell home directory and a project skeleton",
	Long: `Create the inkwell home directory with a default config file, and the
project directory tree (collections, chapters, prompts, logs) under --project.

Existing files are never overwritten.

Examples:
  inkwell init                       # home config + project in current dir
  inkwell init -p ~/novels/mybook    # project in a specific directory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if !h.ConfigExists() {
			if err := config.WriteDefault(h.ConfigPath()); err != nil {
				return err
			}
			fmt.Printf("wrote default config to %s\n", h.ConfigPath())
		} else {
			fmt.Printf("config already exists at %s\n", h.ConfigPath())
		}

		project, err := home.NewProject(projectDir)
		if err != nil {
			return err
		}
		if err := project.EnsureExists(); err != nil {
			return err
		}
		fmt.Printf("project initialized at %s\n", project.Root())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
