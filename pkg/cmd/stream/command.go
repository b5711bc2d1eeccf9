package stream

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/birdayz/transcode/pkg/app"
	"github.com/birdayz/transcode/pkg/codec"
	tcstream "github.com/birdayz/transcode/pkg/stream"
)

// NewCommand returns the "transcode stream" command.
func NewCommand(a *app.App) *cobra.Command {
	var (
		fromFlag          string
		toFlag            string
		deadLetterFlag    string
		groupFlag         string
		schemeFlag        string
		directionFlag     string
		fromBeginningFlag bool
		createTopicsFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Transcode the values of a Kafka topic into another topic",
		Long: `Consume every record of --from, run its value through the scheme and
produce the payload to --to with the same key. Records that fail are written
to --dead-letter when given and dropped otherwise. Runs until interrupted.`,
		Example: `  transcode stream --from raw --to encoded -s base64 -d encode
  transcode stream --from in --to out --dead-letter failed -s integer -g transcoders`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.SetupLogger(); err != nil {
				return err
			}
			defer func() { _ = a.Logger.Sync() }()

			schemeName := schemeFlag
			if schemeName == "" {
				s, ok := a.Cfg.Scheme()
				if !ok {
					return errors.New("no scheme given: use --scheme or set default-scheme in the config")
				}
				schemeName = s.String()
			}
			scheme, err := codec.ParseScheme(schemeName)
			if err != nil {
				return err
			}
			direction := a.Cfg.Direction()
			if directionFlag != "" {
				if direction, err = codec.ParseDirection(directionFlag); err != nil {
					return err
				}
			}

			cl, err := a.NewClient(tcstream.ConsumerOpts(fromFlag, groupFlag, fromBeginningFlag)...)
			if err != nil {
				return err
			}
			defer cl.Close()

			ctx := cmd.Context()
			if createTopicsFlag {
				topics := []string{fromFlag, toFlag}
				if deadLetterFlag != "" {
					topics = append(topics, deadLetterFlag)
				}
				if err := cl.EnsureTopics(ctx, topics...); err != nil {
					return err
				}
			}

			t := &tcstream.Transcoder{
				Client:     cl,
				Source:     fromFlag,
				Sink:       toFlag,
				DeadLetter: deadLetterFlag,
				Scheme:     scheme,
				Direction:  direction,
				Logger:     a.Logger,
			}
			if err := t.Run(ctx); err != nil {
				return err
			}

			stats := t.Stats()
			a.Logger.Info("stream finished", zap.Int64("processed", stats.Processed), zap.Int64("failed", stats.Failed))
			fmt.Fprintf(a.ErrWriter, "Processed %d records, %d failed.\n", stats.Processed, stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Source topic")
	cmd.Flags().StringVar(&toFlag, "to", "", "Sink topic")
	cmd.Flags().StringVar(&deadLetterFlag, "dead-letter", "", "Topic for records that fail to transcode")
	cmd.Flags().StringVarP(&groupFlag, "group", "g", "", "Consumer group; without one, offsets are not committed")
	cmd.Flags().StringVarP(&schemeFlag, "scheme", "s", "", "Scheme identifier")
	cmd.Flags().StringVarP(&directionFlag, "direction", "d", "", "encode or decode")
	cmd.Flags().BoolVar(&fromBeginningFlag, "from-beginning", false, "Start at the oldest offset when there is no committed offset")
	cmd.Flags().BoolVar(&createTopicsFlag, "create-topics", false, "Create missing topics with broker defaults")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.RegisterFlagCompletionFunc("scheme", app.CompleteScheme)
	_ = cmd.RegisterFlagCompletionFunc("direction", app.CompleteDirection)
	return cmd
}
