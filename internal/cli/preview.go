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
	"github.com/matzehuels/archdraw/pkg/preview"
)

// previewCommand creates the preview command for Graphviz hierarchy views.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		output string
		opts   preview.Options
	)

	cmd := &cobra.Command{
		Use:   "preview [records|document]",
		Short: "Render the containment hierarchy as SVG or DOT",
		Long: `Render the containment hierarchy as SVG or DOT.

Layers and boxes with children become clusters, leaves become nodes, and
connections become edges. A .drawio input is reconstructed first. The output
format follows the extension of -o: .dot writes Graphviz source, anything else
writes SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.preview.svg)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show kind and shape in labels")
	cmd.Flags().BoolVar(&opts.HideConnections, "no-connections", false, "omit connection edges")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input, output string, opts preview.Options) error {
	d, err := c.loadDiagram(ctx, input)
	if err != nil {
		return err
	}
	f, err := arch.Build(*d)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = withExt(input, ".preview.svg")
	}

	dot := preview.ToDOT(f, opts)
	data := []byte(dot)
	if !strings.EqualFold(filepath.Ext(outputPath), ".dot") {
		spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering preview of %d elements...", f.Len()))
		spinner.Start()
		data, err = preview.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Preview failed")
			return err
		}
		spinner.Stop()
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Preview of %s", titleOf(f))
	printFile(outputPath)
	return nil
}

// loadDiagram reads records, or reconstructs them from a draw.io document.
func (c *CLI) loadDiagram(ctx context.Context, path string) (*arch.Diagram, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".drawio", ".xml":
		doc, err := recordio.ImportDocument(path)
		if err != nil {
			return nil, err
		}
		runner, err := c.newRunner(ctx, true)
		if err != nil {
			return nil, err
		}
		defer runner.Close()
		return runner.Reconstruct(ctx, doc), nil
	}
	return recordio.ImportRecords(path)
}
