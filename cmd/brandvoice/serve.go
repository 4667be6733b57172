package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/brand-voice/internal/server"
	"github.com/jonathan/brand-voice/internal/voice"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes the analyze, extract and generate endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			cfg := server.Config{
				Port:           a.cfg.Server.Port,
				MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			srv := server.New(cfg, voice.NewService(client, a.logger), a.newExtractor(), a.logger)
			return srv.Start()
		},
	}

	cmd.Flags().IntVar(&port, "port", 5000, "Port to listen on (overrides config and PORT)")
	return cmd
}
