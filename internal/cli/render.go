package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdraw/pkg/arch"
	recordio "github.com/matzehuels/archdraw/pkg/io"
	"github.com/matzehuels/archdraw/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	canvas     canvasFlags
	output     string // output file path (default: <input>.drawio)
	compressed bool   // deflate the diagram payload
	diagramID  string // fixed diagram id instead of a random one
}

// renderCommand creates the render command for producing draw.io documents.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [records]",
		Short: "Render architecture records to a draw.io document",
		Long: `Render architecture records to a draw.io document.

The records file (JSON, TOML, or YAML, chosen by extension) declares layers,
boxes, components, and connections. Every element is positioned on the canvas
and the result is written as an .drawio file that opens in diagrams.net.

Layouts and documents are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := opts.canvas.options(cmd, c.config.Canvas)
			if cmd.Flags().Changed("compressed") {
				popts.Compressed = opts.compressed
			}
			popts.DiagramID = opts.diagramID
			return c.runRender(cmd.Context(), args[0], opts.output, opts.canvas.noCache, popts)
		},
	}

	opts.canvas.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.drawio)")
	cmd.Flags().BoolVar(&opts.compressed, "compressed", false, "deflate the diagram payload")
	cmd.Flags().StringVar(&opts.diagramID, "id", "", "diagram id (default: random)")

	cmd.ValidArgsFunction = recordFileCompletion

	return cmd
}

// runRender loads the records, renders them, and writes the document.
func (c *CLI) runRender(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	d, err := recordio.ImportRecords(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()
	prog := newProgress(c.Logger)
	opts.OnStage = func(ev pipeline.StageEvent) {
		spinner.Stage(ev)
		prog.onStage(ev)
	}

	result, err := runner.Render(ctx, *d, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("rendered",
		"elements", result.Stats.NodeCount,
		"crossings", result.Crossings,
		"cells", result.Stats.CellCount)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = withExt(input, ".drawio")
	}
	if err := os.WriteFile(outputPath, result.Data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Rendered %s", titleOf(result.Forest))
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.ConnectionCount, result.CacheInfo.DocumentHit)
	printWarnings(result.Warnings)
	printNewline()
	printNextStep("Read it back", appName+" reconstruct "+outputPath)

	return nil
}

// printWarnings lists record and layout warnings.
func printWarnings(warnings []arch.Warning) {
	for _, w := range warnings {
		printWarning("%s", w.Message)
	}
}

func titleOf(f *arch.Forest) string {
	if f == nil || f.Title == "" {
		return "diagram"
	}
	return f.Title
}

// withExt swaps the extension of path for ext.
func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
