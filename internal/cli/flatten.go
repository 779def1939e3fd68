package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epitools/tracetab/pkg/errors"
	"github.com/epitools/tracetab/pkg/pipeline"
)

// flattenOpts holds the command-line flags for the flatten command.
type flattenOpts struct {
	formats string // comma-separated export formats
	output  string // output path or directory ("-" for stdout)
	label   string // label attached to a saved result
	save    bool   // persist the result to the configured store
	refresh bool   // bypass the table cache
	noCache bool   // disable the cache entirely
}

// flattenCommand creates the flatten command. It reads a trace document
// (or stdin with "-"), flattens it into a network table, and writes the
// requested export formats.
func (c *CLI) flattenCommand() *cobra.Command {
	opts := flattenOpts{}

	cmd := &cobra.Command{
		Use:   "flatten <traces.json>",
		Short: "Flatten contact traces into a network table",
		Long: `Flatten a trace document into a flat network table.

The input is a JSON envelope describing a directional trace, a bidirectional
trace, or a collection of traced elements. Pass "-" to read from stdin.

Examples:
  tracetab flatten traces.json                      # JSON table to stdout
  tracetab flatten traces.json -f csv -o table.csv  # CSV to a file
  tracetab flatten traces.json -f json,csv -o out/  # both formats into a directory
  tracetab flatten traces.json --save -l "aug 2005" # persist to the result store`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFlatten(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "export formats, comma-separated: json,csv (default json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or directory (stdout if empty)")
	cmd.Flags().StringVarP(&opts.label, "label", "l", "", "label for the saved result")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the result to the configured store")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached table exists")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the table cache")

	return cmd
}

func (c *CLI) runFlatten(cmd *cobra.Command, input string, opts flattenOpts) error {
	ctx := cmd.Context()

	if opts.label != "" {
		if err := errors.ValidateLabel(opts.label); err != nil {
			return err
		}
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pOpts := pipeline.Options{
		Input:   input,
		Label:   opts.label,
		Formats: parseFormats(opts.formats),
		Refresh: opts.refresh,
		Save:    opts.save,
		Logger:  c.Logger,
	}
	if input == "-" {
		pOpts.Input = ""
		pOpts.Reader = cmd.InOrStdin()
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pOpts)
	if err != nil {
		printError("%s", errors.UserMessage(err))
		return err
	}
	prog.done(fmt.Sprintf("Flattened %d edges into %d rows", result.Stats.EdgeCount, result.Stats.RowCount))

	if err := writeArtifacts(result, opts.output); err != nil {
		return err
	}

	// Summary goes to stderr so piped stdout stays clean.
	if opts.output != "" {
		printSuccess("Flattened %s", input)
		printStats(result.Stats.ElementCount, result.Stats.EdgeCount, result.Stats.RowCount, result.CacheInfo.TableHit)
		if result.ResultID != "" {
			printDetail("Saved as %s", result.ResultID)
			printNextStep("Inspect it later", "tracetab results show "+result.ResultID)
		}
	}
	return nil
}

// writeArtifacts writes each exported format to its destination. With one
// format the output path names a file; with several it names a directory.
// An empty path writes to stdout.
func writeArtifacts(result *pipeline.Result, output string) error {
	if output == "" {
		for _, format := range sortedFormats(result) {
			os.Stdout.Write(result.Artifacts[format])
		}
		return nil
	}

	formats := sortedFormats(result)
	if len(formats) == 1 {
		path := output
		if strings.HasSuffix(output, string(os.PathSeparator)) {
			path = filepath.Join(output, "network."+formats[0])
		}
		return writeArtifact(path, result.Artifacts[formats[0]])
	}

	if err := os.MkdirAll(output, 0755); err != nil {
		return err
	}
	for _, format := range formats {
		path := filepath.Join(output, "network."+format)
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
	}
	return nil
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// sortedFormats returns the artifact formats in stable order (json before csv).
func sortedFormats(result *pipeline.Result) []string {
	var formats []string
	for _, f := range []string{pipeline.FormatJSON, pipeline.FormatCSV} {
		if _, ok := result.Artifacts[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}
