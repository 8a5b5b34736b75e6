// Package initcmder provides the init command for initializing a local .clerk
// directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/clerk/pkg/cliui"
	"github.com/papercomputeco/clerk/pkg/config"
)

const (
	dirName = ".clerk"
)

const initLongDesc string = `Initialize a new .clerk/ directory in the current working directory.

Creates a local .clerk/ directory that takes precedence over the default
~/.clerk/ directory for configuration, the local vector store and chat state.

With --preset, a config.toml is written with the completion and embedding
settings of that provider. Available presets: gemini, openai, anthropic, ollama.

Examples:
  clerk init
  clerk init --preset openai`

const initShortDesc string = "Initialize a local .clerk/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "",
		"Write a config for a provider ("+strings.Join(config.ValidPresetNames(), ", ")+")")

	return cmd
}

func runInit(preset string) error {
	// Resolve the preset first so a typo leaves nothing behind.
	var cfg *config.Config
	if preset != "" {
		var err error
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		fmt.Printf("Already initialized: %s\n", dir)
	default:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .clerk directory: %w", err)
		}
		fmt.Printf("Initialized .clerk directory: %s\n", dir)
	}

	if cfg == nil {
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("%s Wrote %s preset to %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(strings.ToLower(preset)),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}
