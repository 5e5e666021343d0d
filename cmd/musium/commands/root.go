// Package commands implements the musium CLI's subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/musium/musium/internal/config"
	"github.com/musium/musium/internal/services"
	"github.com/musium/musium/internal/shared"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var configPath string
var debug bool

// NewRootCommand assembles the musium CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "musium",
		Short: "A FLAC library scanner, indexer and playback daemon.",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "/etc/musium.conf", "path to the configuration file")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// initContainer loads the configuration file and wires every service.
func initContainer() (*services.Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := shared.NewZeroLogger(debug)
	return services.New(cfg, logger)
}
