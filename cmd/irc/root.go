package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sunholo/irlang/internal/engine"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "irc",
		Short: "Driver for the dependent-IR engine's demo scenarios",
		Long: "irc builds and checks IR graphs directly through the constructor\n" +
			"API and reports the outcome of each end-to-end scenario from spec.md §8.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to an engine tuning YAML file (default: built-in defaults)")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	return root
}

func loadEngineConfig() (engine.Config, error) {
	if configPath == "" {
		return engine.Default(), nil
	}
	return engine.Load(configPath)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", color.CyanString(s.id), s.summary)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run one or more scenarios (default: all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}
			selected, err := selectScenarios(args)
			if err != nil {
				return err
			}

			failed := 0
			for _, s := range selected {
				ok := runScenario(cmd, cfg, s)
				if !ok {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(selected))
			}
			return nil
		},
	}
}

func selectScenarios(ids []string) ([]scenario, error) {
	if len(ids) == 0 {
		return scenarios, nil
	}
	byID := make(map[string]scenario, len(scenarios))
	for _, s := range scenarios {
		byID[s.id] = s
	}
	out := make([]scenario, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (see %q)", id, "irc list")
		}
		out = append(out, s)
	}
	return out, nil
}

func runScenario(cmd *cobra.Command, cfg engine.Config, s scenario) bool {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint(s.id), s.summary)

	mod := cfg.NewModule()
	log := newScenarioLogger(os.Stderr)
	result, err := s.run(mod, log)
	if err != nil {
		fmt.Fprintf(out, "  %s %v\n", color.RedString("FAIL"), err)
		return false
	}
	fmt.Fprintf(out, "  %s %s\n", color.GreenString("PASS"), result)
	return true
}
