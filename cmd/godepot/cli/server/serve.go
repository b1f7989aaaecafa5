package server

import (
	"context"
	"fmt"

	"github.com/mwantia/godepot/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/godepot/internal/config/server"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Godepot server",
		Long:  `Start the Godepot file depot server`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			agent := agent.NewAgent(cfg)
			if err := agent.Serve(context.Background()); err != nil {
				print(err)
				return err
			}

			return nil
		},
	}

	return cmd
}
