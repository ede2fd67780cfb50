package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/geom"
	recordio "github.com/matzehuels/archdraw/pkg/io"
	"github.com/matzehuels/archdraw/pkg/pipeline"
)

// layoutFile is the JSON written by the layout command.
type layoutFile struct {
	Width     float64              `json:"width"`
	Height    float64              `json:"height"`
	Rects     map[string]geom.Rect `json:"rects"`
	Crossings int                  `json:"crossings"`
	Warnings  []arch.Warning       `json:"warnings,omitempty"`
}

// layoutCommand creates the layout command for computing rectangles only.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		canvas canvasFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [records]",
		Short: "Compute element rectangles without writing a document",
		Long: `Compute element rectangles without writing a document.

The output is a JSON file mapping every layer, box, and component id to its
absolute rectangle, along with the estimated connection crossings. Use "-o -"
to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, canvas.noCache, canvas.options(cmd, c.config.Canvas))
		},
	}

	canvas.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")

	cmd.ValidArgsFunction = recordFileCompletion

	return cmd
}

// runLayout loads the records, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	d, err := recordio.ImportRecords(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	opts.OnStage = prog.onStage
	result, err := runner.Layout(ctx, *d, opts)
	if err != nil {
		return err
	}

	width, height := opts.Canvas(d.Config)
	out := layoutFile{
		Width:     width,
		Height:    height,
		Rects:     result.Rects,
		Crossings: result.Crossings,
		Warnings:  result.Warnings,
	}

	if output == "-" {
		return writeLayout(os.Stdout, out)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = withExt(input, ".layout.json")
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output %s: %w", outputPath, err)
	}
	defer f.Close()
	if err := writeLayout(f, out); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	prog.done("laid out", "elements", len(result.Rects), "crossings", result.Crossings)
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.ConnectionCount, result.CacheInfo.LayoutHit)
	printKeyValue("crossings", fmt.Sprint(result.Crossings))
	printWarnings(result.Warnings)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}

func writeLayout(w io.Writer, out layoutFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
