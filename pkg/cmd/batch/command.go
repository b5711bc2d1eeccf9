package batch

import (
	"github.com/spf13/cobra"

	"github.com/birdayz/transcode/pkg/app"
)

// NewCommand returns the "transcode batch" command.
func NewCommand(a *app.App) *cobra.Command {
	var workersFlag int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process JSON requests from stdin",
		Long: `Process one JSON request per line from stdin, e.g.
  {"id":"1","scheme":"url","direction":"encode","data":"a b"}
Requests run concurrently; results are printed in input order. Missing
scheme and direction fall back to the config defaults.`,
		Example: `  cat requests.jsonl | transcode batch -o json-each-row
  cat requests.jsonl | transcode batch --workers 16 --template '{{ .ID }} {{ .Payload }}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") {
				a.Cfg.Batch.Workers = workersFlag
			}
			var scheme string
			if s, ok := a.Cfg.Scheme(); ok {
				scheme = s.String()
			}
			reqs, err := a.Requests(nil, scheme, a.Cfg.Direction().String(), app.InputFormatJSONEachRow)
			if err != nil {
				return err
			}
			return a.Process(cmd.Context(), reqs)
		},
	}

	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Number of concurrent workers (default from config, at least 1)")
	a.AddOutputFlags(cmd)
	return cmd
}
