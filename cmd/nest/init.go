package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/nest/internal/config"
	"github.com/ZebulonRouseFrantzich/nest/internal/store"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default nest.lua",
		Long: `Write nest.lua with the default settings into the nest config directory.

An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.settingsPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			content := config.NewGenerator().Generate(config.DefaultSettings())
			if err := store.WriteFileAtomic(path, []byte(content)); err != nil {
				return fmt.Errorf("write settings: %w", err)
			}
			fmt.Fprintf(a.out, "%s %s\n", successStyle.Render("Wrote"), path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing nest.lua")
	return cmd
}
