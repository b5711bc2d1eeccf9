package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"text/template"

	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	tcclient "github.com/birdayz/transcode/pkg/client"
	"github.com/birdayz/transcode/pkg/config"
	"github.com/birdayz/transcode/pkg/observability"
)

// App holds all shared mutable state for the CLI. It is created once per
// invocation and threaded into every command package.
type App struct {
	// I/O
	OutWriter    io.Writer
	ErrWriter    io.Writer
	InReader     io.Reader
	ColorableOut io.Writer
	JSONFmt      *prettyjson.Formatter

	// Config state
	Cfg             config.Config
	CfgFile         string
	ClusterOverride string
	BrokersFlag     []string
	CurrentCluster  *config.Cluster
	LogLevel        string

	// Output
	Output       OutputFormat
	TemplateText string
	NoHeaderFlag bool

	Logger *zap.Logger

	// Root command reference (for completion generation)
	Root *cobra.Command

	mu   sync.Mutex
	tmpl *template.Template
}

// New creates an App with sane defaults.
func New() *App {
	return &App{
		OutWriter:    os.Stdout,
		ErrWriter:    os.Stderr,
		InReader:     os.Stdin,
		ColorableOut: colorable.NewColorableStdout(),
		JSONFmt:      prettyjson.NewFormatter(),
		Logger:       zap.NewNop(),
	}
}

// BindIO takes the command's streams. Colors are only emitted when writing
// to the real stdout.
func (a *App) BindIO(cmd *cobra.Command) {
	a.OutWriter = cmd.OutOrStdout()
	a.ErrWriter = cmd.ErrOrStderr()
	a.InReader = cmd.InOrStdin()

	if a.OutWriter != os.Stdout {
		a.ColorableOut = a.OutWriter
		a.JSONFmt.DisabledColor = true
	}
}

// InitConfig reads the config file, resolves the active cluster and applies
// config defaults to flags the user did not set. Called by
// PersistentPreRunE on the root command.
func (a *App) InitConfig() error {
	var err error
	a.Cfg, err = config.ReadConfig(a.CfgFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.Cfg.ClusterOverride = a.ClusterOverride

	if cluster := a.Cfg.ActiveCluster(); cluster != nil {
		a.CurrentCluster = cluster
	} else {
		a.CurrentCluster = &config.Cluster{
			Brokers: []string{"localhost:9092"},
		}
	}
	if a.BrokersFlag != nil {
		a.CurrentCluster.Brokers = a.BrokersFlag
	}

	if a.Output == "" {
		a.Output = OutputFormatDefault
		if a.Cfg.Output != "" {
			if err := a.Output.Set(a.Cfg.Output); err != nil {
				return fmt.Errorf("invalid config: output: %w", err)
			}
		}
	}

	if a.TemplateText != "" {
		a.tmpl, err = ParseTemplate(a.TemplateText)
		if err != nil {
			return err
		}
	}

	return nil
}

// SetupLogger replaces the nop logger with one built from the config.
// The --log-level flag wins over the file.
func (a *App) SetupLogger() error {
	logCfg := a.Cfg.Log
	if a.LogLevel != "" {
		logCfg.Level = a.LogLevel
	}
	logger, err := observability.SetupLogger(logCfg)
	if err != nil {
		return fmt.Errorf("unable to set up logger: %w", err)
	}
	a.Logger = logger
	return nil
}

// NewClient creates a franz-go based client from the current cluster config.
func (a *App) NewClient(opts ...kgo.Opt) (*tcclient.Client, error) {
	cl, err := tcclient.NewWithOptions(a.CurrentCluster, tcclient.WithLogger(a.Logger), tcclient.WithKgoOpts(opts...))
	if err != nil {
		return nil, fmt.Errorf("unable to create client: %w", err)
	}
	return cl, nil
}

// ReadItems returns the data items to process: the joined args if any were
// given, otherwise stdin split according to format.
func (a *App) ReadItems(args []string, format InputFormat) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}

	if format == InputFormatLines {
		var items []string
		scanner := bufio.NewScanner(a.InReader)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			items = append(items, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return items, nil
	}

	b, err := io.ReadAll(a.InReader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	// A single trailing newline comes from echo or a heredoc, not the data.
	s := strings.TrimSuffix(string(b), "\n")
	s = strings.TrimSuffix(s, "\r")
	return []string{s}, nil
}

// AddOutputFlags installs --output and --template on cmd.
func (a *App) AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().VarP(&a.Output, "output", "o", "Output format. One of: default, raw, json, json-each-row, hex, msgpack")
	cmd.Flags().StringVar(&a.TemplateText, "template", "", "Go template applied to every result record (sprig functions available)")
	_ = cmd.RegisterFlagCompletionFunc("output", CompleteOutputFormat)
}

// AddNoHeadersFlag installs --no-headers on cmd.
func (a *App) AddNoHeadersFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&a.NoHeaderFlag, "no-headers", false, "Hide table headers")
}

// ValidConfigArgs provides shell completion for cluster names.
func (a *App) ValidConfigArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	clusterList := make([]string, 0, len(a.Cfg.Clusters))
	for _, cluster := range a.Cfg.Clusters {
		clusterList = append(clusterList, cluster.Name)
	}
	return clusterList, cobra.ShellCompDirectiveNoFileComp
}

const (
	TabwriterMinWidth = 6
	TabwriterWidth    = 4
	TabwriterPadding  = 3
	TabwriterPadChar  = ' '
	TabwriterFlags    = 0
)

// NewTabWriter creates a standard tabwriter for CLI output.
func NewTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, TabwriterMinWidth, TabwriterWidth, TabwriterPadding, TabwriterPadChar, TabwriterFlags)
}
