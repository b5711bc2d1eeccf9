package schemes

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/birdayz/transcode/pkg/app"
	"github.com/birdayz/transcode/pkg/codec"
)

// NewCommand returns the "transcode schemes" command.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemes",
		Short: "List supported schemes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := app.NewTabWriter(a.OutWriter)
			if !a.NoHeaderFlag {
				fmt.Fprintf(w, "ID\tNAME\tDEFAULT\t\n")
			}
			def, hasDefault := a.Cfg.Scheme()
			for _, s := range codec.Schemes() {
				marker := ""
				if hasDefault && s == def {
					marker = "*"
				}
				fmt.Fprintf(w, "%v\t%v\t%v\t\n", s, s.Label(), marker)
			}
			return w.Flush()
		},
	}
	a.AddNoHeadersFlag(cmd)
	return cmd
}
