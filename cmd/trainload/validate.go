package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"trainload/internal/config"
)

func newValidateCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config file and print it with defaults applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func validateConfig(w io.Writer, path string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}
	if cfg.Target.Token != "" {
		cfg.Target.Token = "****"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
