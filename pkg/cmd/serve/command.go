package serve

import (
	"github.com/spf13/cobra"

	"github.com/birdayz/transcode/pkg/app"
	"github.com/birdayz/transcode/pkg/config"
	"github.com/birdayz/transcode/pkg/server"
)

// NewCommand returns the "transcode serve" command.
func NewCommand(a *app.App) *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the codecs over HTTP",
		Long: `Serve the codecs over HTTP until interrupted.

  POST /v1/{encode|decode}/{scheme}   body is the data, or {"data": "..."} as JSON
  GET  /v1/schemes
  GET  /healthz
  GET  /metrics`,
		Example: `  transcode serve --addr :8080
  curl -d 'a b' localhost:8080/v1/encode/url`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.SetupLogger(); err != nil {
				return err
			}
			defer func() { _ = a.Logger.Sync() }()

			addr := a.Cfg.ServerAddr()
			if addrFlag != "" {
				addr = addrFlag
			}
			return server.New(a.Logger).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default from config, then "+config.DefaultServerAddr+")")
	return cmd
}
