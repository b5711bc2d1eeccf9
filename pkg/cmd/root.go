package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/birdayz/transcode/pkg/app"
	"github.com/birdayz/transcode/pkg/cmd/batch"
	"github.com/birdayz/transcode/pkg/cmd/completion"
	tcconfig "github.com/birdayz/transcode/pkg/cmd/config"
	"github.com/birdayz/transcode/pkg/cmd/schemes"
	"github.com/birdayz/transcode/pkg/cmd/serve"
	"github.com/birdayz/transcode/pkg/cmd/stream"
	"github.com/birdayz/transcode/pkg/cmd/transcode"
)

// Execute is the single entry point for the CLI.
func Execute(version, commit string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(app.New())
	root.Version = fmt.Sprintf("%s (%s)", version, commit)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree around a.
func NewRootCommand(a *app.App) *cobra.Command {
	root := &cobra.Command{
		Use:          "transcode",
		Short:        "Encode and decode text with a fixed set of schemes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.BindIO(cmd)
			return a.InitConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.CfgFile, "config", "", "config file (default is $HOME/.transcode/config)")
	root.PersistentFlags().StringSliceVarP(&a.BrokersFlag, "brokers", "b", nil, "Comma separated list of broker ip:port pairs")
	root.PersistentFlags().StringVarP(&a.ClusterOverride, "cluster", "c", "", "set a temporary current cluster")
	root.PersistentFlags().StringVar(&a.LogLevel, "log-level", "", "Log level for long running commands (debug, info, warn, error)")

	root.AddCommand(
		transcode.NewEncodeCommand(a),
		transcode.NewDecodeCommand(a),
		transcode.NewRunCommand(a),
		schemes.NewCommand(a),
		batch.NewCommand(a),
		stream.NewCommand(a),
		serve.NewCommand(a),
		tcconfig.NewCommand(a),
		completion.NewCommand(root, a),
	)

	a.Root = root
	return root
}
