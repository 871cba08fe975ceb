package main

import (
	"rms/config"
	"rms/helper"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	steps := []struct {
		use   string
		short string
		run   func(*config.Config) error
	}{
		{use: "up", short: "Apply all pending migrations", run: helper.Up},
		{use: "down", short: "Roll back the last migration", run: helper.Down},
		{use: "drop", short: "Roll back every migration", run: helper.Drop},
		{use: "step-up", short: "Apply the next pending migration", run: helper.StepUp},
	}

	for _, step := range steps {
		migrate.AddCommand(&cobra.Command{
			Use:   step.use,
			Short: step.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return step.run(config.Get())
			},
		})
	}

	return migrate
}
