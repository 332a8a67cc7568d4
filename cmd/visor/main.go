package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"visor/internal/config"
	"visor/internal/storage"
	"visor/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "visor: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "visor",
		Short:         "Keyboard-driven task manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()
			return ui.Run(db, cfg)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $VISOR_CONFIG or the user config dir)")

	root.AddCommand(a.addCmd())
	root.AddCommand(a.listCmd())
	root.AddCommand(a.projectsCmd())
	root.AddCommand(a.agendaCmd())
	root.AddCommand(a.doneCmd())
	root.AddCommand(a.statusCmd())
	return root
}

func (a *app) open() (config.Config, *storage.Store, error) {
	path := a.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, db, nil
}
