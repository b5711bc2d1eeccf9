package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/birdayz/transcode/pkg/app"
	"github.com/birdayz/transcode/pkg/codec"
	"github.com/birdayz/transcode/pkg/config"
)

// NewCommand returns the "transcode config" command with subcommands.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Handle transcode configuration",
	}

	cmd.AddCommand(
		newShowCommand(a),
		newSetDefaultSchemeCommand(a),
		newSetDefaultDirectionCommand(a),
		newSelectSchemeCommand(a),
		newImportCommand(a),
		newCurrentClusterCommand(a),
		newUseClusterCommand(a),
		newGetClustersCommand(a),
		newAddClusterCommand(a),
		newRemoveClusterCommand(a),
		newSelectClusterCommand(a),
		newAddEventhubCommand(a),
	)

	return cmd
}

func newShowCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.Cfg
			cfg.Clusters = make([]*config.Cluster, len(a.Cfg.Clusters))
			for i, c := range a.Cfg.Clusters {
				cp := *c
				if cp.SASL != nil {
					s := *cp.SASL
					if s.Password != "" {
						s.Password = "****"
					}
					if s.ClientSecret != "" {
						s.ClientSecret = "****"
					}
					if s.Token != "" {
						s.Token = "****"
					}
					cp.SASL = &s
				}
				cfg.Clusters[i] = &cp
			}

			fmt.Fprintf(a.OutWriter, "# %s\n", a.Cfg.Path())
			enc := yaml.NewEncoder(a.OutWriter)
			enc.SetIndent(2)
			if err := enc.Encode(&cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newSetDefaultSchemeCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "set-default-scheme SCHEME",
		Short:             "Set the scheme used when --scheme is not given",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: app.CompleteScheme,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Cfg.SetDefaultScheme(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.OutWriter, "Default scheme set to \"%v\".\n", args[0])
			return nil
		},
	}
}

func newSetDefaultDirectionCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "set-default-direction DIRECTION",
		Short:             "Set the direction used when --direction is not given",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: app.CompleteDirection,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Cfg.SetDefaultDirection(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.OutWriter, "Default direction set to \"%v\".\n", args[0])
			return nil
		},
	}
}

func newSelectSchemeCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "select-scheme",
		Short: "Interactively select the default scheme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemes := codec.Schemes()
			labels := make([]string, len(schemes))
			pos := 0
			current, hasCurrent := a.Cfg.Scheme()
			for i, s := range schemes {
				labels[i] = fmt.Sprintf("%s (%s)", s.Label(), s)
				if hasCurrent && s == current {
					pos = i
				}
			}

			p := promptui.Select{
				Label:     "Select default scheme",
				Items:     labels,
				Searcher:  searcher(labels),
				Size:      len(labels),
				CursorPos: pos,
			}

			i, _, err := p.Run()
			if err != nil {
				// User cancelled (e.g. Ctrl-C). Not an error.
				return nil
			}

			selected := schemes[i].String()
			if err := a.Cfg.SetDefaultScheme(selected); err != nil {
				return err
			}
			fmt.Fprintf(a.OutWriter, "Default scheme set to \"%v\".\n", selected)
			return nil
		},
	}
}

func newImportCommand(a *app.App) *cobra.Command {
	var nameFlag string

	cmd := &cobra.Command{
		Use:   "import FILE.properties",
		Short: "Merge a Java-style .properties file into the config",
		Long: `Merge a Java-style .properties file into the config file. Recognized keys:
  transcode.scheme, transcode.direction, transcode.output,
  transcode.batch.workers, transcode.server.addr,
  bootstrap.servers, security.protocol, sasl.mechanism,
  sasl.username, sasl.password, sasl.jaas.config`,
		Example: "  transcode config import ~/.ccloud/config --name ccloud",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imported, err := config.ReadProperties(args[0], nameFlag)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}

			a.Cfg.Merge(imported)
			if err := a.Cfg.Write(); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(a.OutWriter, "Imported %s into %s\n", args[0], a.Cfg.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "imported", "Name of the cluster created from bootstrap.servers")
	return cmd
}

// Clusters are only used by "transcode stream". Without one it connects to
// localhost:9092.
func newCurrentClusterCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:     "current-cluster",
		Aliases: []string{"current-context"},
		Short:   "Print the Kafka cluster the stream command connects to",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if a.Cfg.CurrentCluster == "" {
				fmt.Fprintln(a.OutWriter, "none (stream falls back to localhost:9092)")
				return
			}
			fmt.Fprintln(a.OutWriter, a.Cfg.CurrentCluster)
		},
	}
}

func newUseClusterCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "use-cluster NAME",
		Short:             "Select the Kafka cluster for transcode stream",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.ValidConfigArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Cfg.SetCurrentCluster(args[0]); err != nil {
				return fmt.Errorf("cluster %q not found", args[0])
			}
			fmt.Fprintf(a.OutWriter, "Streams now use cluster %q.\n", args[0])
			return nil
		},
	}
}

func newGetClustersCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-clusters",
		Short: "List the configured Kafka clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := app.NewTabWriter(a.OutWriter)
			if !a.NoHeaderFlag {
				fmt.Fprintf(w, "CURRENT\tNAME\tBROKERS\tSASL\t\n")
			}
			for _, c := range a.Cfg.Clusters {
				marker := ""
				if c.Name == a.Cfg.CurrentCluster {
					marker = "*"
				}
				mechanism := "-"
				if c.SASL != nil && c.SASL.Mechanism != "" {
					mechanism = c.SASL.Mechanism
				}
				fmt.Fprintf(w, "%v\t%v\t%v\t%v\t\n", marker, c.Name, strings.Join(c.Brokers, ","), mechanism)
			}
			return w.Flush()
		},
	}
	a.AddNoHeadersFlag(cmd)
	return cmd
}

func newAddClusterCommand(a *app.App) *cobra.Command {
	var (
		mechanismFlag string
		usernameFlag  string
		passwordFlag  string
		protocolFlag  string
	)

	cmd := &cobra.Command{
		Use:   "add-cluster NAME",
		Short: "Add a Kafka cluster for transcode stream",
		Example: `  transcode config add-cluster local -b localhost:9092
  transcode config add-cluster prod -b kafka-1:9093,kafka-2:9093 --security-protocol SASL_SSL \
    --sasl-mechanism SCRAM-SHA-512 --sasl-username transcoder --sasl-password "$PASS"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.BrokersFlag) == 0 {
				return fmt.Errorf("could not add cluster: --brokers is required")
			}

			cluster := &config.Cluster{
				Name:             args[0],
				Brokers:          a.BrokersFlag,
				SecurityProtocol: protocolFlag,
			}
			if mechanismFlag != "" {
				cluster.SASL = &config.SASL{
					Mechanism: mechanismFlag,
					Username:  usernameFlag,
					Password:  passwordFlag,
				}
			}
			if err := a.Cfg.AddCluster(cluster); err != nil {
				return fmt.Errorf("could not add cluster: %w", err)
			}
			fmt.Fprintf(a.OutWriter, "Added cluster %q.\n", cluster.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&mechanismFlag, "sasl-mechanism", "", "PLAIN, SCRAM-SHA-256, SCRAM-SHA-512, OAUTHBEARER or AWS_MSK_IAM")
	cmd.Flags().StringVar(&usernameFlag, "sasl-username", "", "SASL username")
	cmd.Flags().StringVar(&passwordFlag, "sasl-password", "", "SASL password")
	cmd.Flags().StringVar(&protocolFlag, "security-protocol", "", "PLAINTEXT, SSL, SASL_PLAINTEXT or SASL_SSL")
	return cmd
}

func newRemoveClusterCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "remove-cluster NAME",
		Short:             "Remove a Kafka cluster",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.ValidConfigArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Cfg.RemoveCluster(args[0]); err != nil {
				return fmt.Errorf("could not remove cluster: %w", err)
			}
			fmt.Fprintf(a.OutWriter, "Removed cluster %q.\n", args[0])
			return nil
		},
	}
}

func newSelectClusterCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "select-cluster",
		Short: "Interactively select the Kafka cluster for transcode stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.Cfg.Clusters) == 0 {
				return fmt.Errorf("no clusters configured, see transcode config add-cluster")
			}
			names := make([]string, len(a.Cfg.Clusters))
			pos := 0
			for i, c := range a.Cfg.Clusters {
				names[i] = c.Name
				if c.Name == a.Cfg.CurrentCluster {
					pos = i
				}
			}

			p := promptui.Select{
				Label:     "Select cluster",
				Items:     names,
				Searcher:  searcher(names),
				Size:      10,
				CursorPos: pos,
			}
			_, selected, err := p.Run()
			if err != nil {
				// User cancelled (e.g. Ctrl-C). Not an error.
				return nil
			}

			if err := a.Cfg.SetCurrentCluster(selected); err != nil {
				return err
			}
			fmt.Fprintf(a.OutWriter, "Streams now use cluster %q.\n", selected)
			return nil
		},
	}
}

// eventHubEndpoint extracts the namespace from an Event Hubs connection
// string.
var eventHubEndpoint = regexp.MustCompile(`^Endpoint=sb://([^./]+)\.servicebus\.windows\.net/?;`)

func newAddEventhubCommand(a *app.App) *cobra.Command {
	var connString string

	cmd := &cobra.Command{
		Use:     "add-eventhub NAME",
		Short:   "Add an Azure Event Hubs namespace as a stream cluster",
		Long:    "Add an Azure Event Hubs namespace through its Kafka endpoint. The connection string is stored as the SASL PLAIN password.",
		Example: `  transcode config add-eventhub hubs --eh-connstring 'Endpoint=sb://my-ns.servicebus.windows.net/;SharedAccessKeyName=...;SharedAccessKey=...'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := eventHubEndpoint.FindStringSubmatch(connString)
			if m == nil {
				return fmt.Errorf("could not add cluster: --eh-connstring must start with Endpoint=sb://<namespace>.servicebus.windows.net/;")
			}

			cluster := &config.Cluster{
				Name:    args[0],
				Brokers: []string{m[1] + ".servicebus.windows.net:9093"},
				SASL: &config.SASL{
					Mechanism: "PLAIN",
					Username:  "$ConnectionString",
					Password:  connString,
				},
				SecurityProtocol: "SASL_SSL",
			}
			if err := a.Cfg.AddCluster(cluster); err != nil {
				return fmt.Errorf("could not add cluster: %w", err)
			}
			fmt.Fprintf(a.OutWriter, "Added Event Hubs namespace %q as cluster %q.\n", m[1], cluster.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&connString, "eh-connstring", "", "Event Hubs connection string")
	_ = cmd.MarkFlagRequired("eh-connstring")
	return cmd
}

func searcher(items []string) func(string, int) bool {
	return func(input string, index int) bool {
		name := strings.ReplaceAll(strings.ToLower(items[index]), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		return strings.Contains(name, input)
	}
}
