package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/birdayz/transcode/pkg/codec"
)

// OutputFormat controls how results are printed.
type OutputFormat string

const (
	OutputFormatDefault     OutputFormat = "default"
	OutputFormatRaw         OutputFormat = "raw"
	OutputFormatJSON        OutputFormat = "json"
	OutputFormatJSONEachRow OutputFormat = "json-each-row"
	OutputFormatHex         OutputFormat = "hex"
	OutputFormatMsgPack     OutputFormat = "msgpack"
)

var outputFormats = []string{"default", "raw", "json", "json-each-row", "hex", "msgpack"}

func (e *OutputFormat) String() string {
	return string(*e)
}

func (e *OutputFormat) Set(v string) error {
	for _, f := range outputFormats {
		if v == f {
			*e = OutputFormat(v)
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(outputFormats, ", "))
}

func (e *OutputFormat) Type() string {
	return "OutputFormat"
}

// CompleteOutputFormat provides shell completion for --output.
func CompleteOutputFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return outputFormats, cobra.ShellCompDirectiveNoFileComp
}

// InputFormat controls how input is split into items.
type InputFormat string

const (
	// InputFormatDefault treats all of stdin as one item.
	InputFormatDefault InputFormat = "default"
	// InputFormatLines treats every line as one item.
	InputFormatLines InputFormat = "lines"
	// InputFormatJSONEachRow reads one request object per line.
	InputFormatJSONEachRow InputFormat = "json-each-row"
)

func (e *InputFormat) String() string {
	return string(*e)
}

func (e *InputFormat) Set(v string) error {
	switch v {
	case "default", "lines", "json-each-row":
		*e = InputFormat(v)
		return nil
	default:
		return fmt.Errorf("must be one of: default, lines, json-each-row")
	}
}

func (e *InputFormat) Type() string {
	return "InputFormat"
}

// CompleteInputFormat provides shell completion for --input.
func CompleteInputFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"default", "lines", "json-each-row"}, cobra.ShellCompDirectiveNoFileComp
}

// CompleteScheme provides shell completion for scheme arguments and flags.
func CompleteScheme(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return codec.SchemeNames(), cobra.ShellCompDirectiveNoFileComp
}

// CompleteDirection provides shell completion for --direction.
func CompleteDirection(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"encode", "decode"}, cobra.ShellCompDirectiveNoFileComp
}
