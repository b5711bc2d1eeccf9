package transcode

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/birdayz/transcode/pkg/app"
	"github.com/birdayz/transcode/pkg/codec"
)

// NewEncodeCommand returns the "transcode encode" command.
func NewEncodeCommand(a *app.App) *cobra.Command {
	return newDirectionCommand(a, codec.Encode)
}

// NewDecodeCommand returns the "transcode decode" command.
func NewDecodeCommand(a *app.App) *cobra.Command {
	return newDirectionCommand(a, codec.Decode)
}

func newDirectionCommand(a *app.App, d codec.Direction) *cobra.Command {
	inputFlag := app.InputFormatDefault
	verb := d.String()

	cmd := &cobra.Command{
		Use:   verb + " SCHEME [DATA...]",
		Short: "Run the " + verb + " direction of a scheme",
		Long:  "Run the " + verb + " direction of a scheme. Data is taken from the arguments, joined by spaces, or read from stdin.",
		Example: `  transcode ` + verb + ` base64 hello
  echo 'a b' | transcode ` + verb + ` url
  cat words.txt | transcode ` + verb + ` punycode --input lines -o json-each-row`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return app.CompleteScheme(cmd, args, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := a.Requests(args[1:], args[0], verb, inputFlag)
			if err != nil {
				return err
			}
			return a.Process(cmd.Context(), reqs)
		},
	}

	addInputFlag(cmd, &inputFlag)
	a.AddOutputFlags(cmd)
	return cmd
}

// NewRunCommand returns the "transcode run" command.
func NewRunCommand(a *app.App) *cobra.Command {
	var (
		schemeFlag    string
		directionFlag string
		inputFlag     = app.InputFormatDefault
	)

	cmd := &cobra.Command{
		Use:   "run [DATA...]",
		Short: "Run a scheme in either direction",
		Long:  "Run a scheme in either direction. --scheme and --direction fall back to default-scheme and default-direction from the config file.",
		Example: `  transcode run -s integer -d encode 42
  transcode config set-default-scheme bootstring && transcode run Ab`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme := schemeFlag
			if scheme == "" {
				s, ok := a.Cfg.Scheme()
				if !ok {
					return errors.New("no scheme given: use --scheme or set default-scheme in the config")
				}
				scheme = s.String()
			}
			direction := directionFlag
			if direction == "" {
				direction = a.Cfg.Direction().String()
			}

			reqs, err := a.Requests(args, scheme, direction, inputFlag)
			if err != nil {
				return err
			}
			return a.Process(cmd.Context(), reqs)
		},
	}

	cmd.Flags().StringVarP(&schemeFlag, "scheme", "s", "", "Scheme identifier (see \"transcode schemes\")")
	cmd.Flags().StringVarP(&directionFlag, "direction", "d", "", "encode or decode")
	_ = cmd.RegisterFlagCompletionFunc("scheme", app.CompleteScheme)
	_ = cmd.RegisterFlagCompletionFunc("direction", app.CompleteDirection)
	addInputFlag(cmd, &inputFlag)
	a.AddOutputFlags(cmd)
	return cmd
}

func addInputFlag(cmd *cobra.Command, f *app.InputFormat) {
	cmd.Flags().Var(f, "input", "Input mode. One of: default (all of stdin is one item), lines, json-each-row")
	_ = cmd.RegisterFlagCompletionFunc("input", app.CompleteInputFormat)
}
