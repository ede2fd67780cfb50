package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	recordio "github.com/matzehuels/archdraw/pkg/io"
)

// reconstructCommand creates the reconstruct command for reading documents
// back into records.
func (c *CLI) reconstructCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "reconstruct [document]",
		Short: "Recover architecture records from a draw.io document",
		Long: `Recover architecture records from a draw.io document.

Full-width top-level shapes become layers, nested shapes become boxes, and
small styled shapes become components. Free-floating text labels are folded
into the shape that contains them. Without -o the records are printed to
stdout in the --format encoding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReconstruct(cmd.Context(), args[0], output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output records file (format from extension)")
	cmd.Flags().StringVarP(&format, "format", "f", string(recordio.FormatYAML), "stdout format: json, toml, yaml")

	cmd.ValidArgsFunction = documentFileCompletion

	return cmd
}

func (c *CLI) runReconstruct(ctx context.Context, input, output, format string) error {
	doc, err := recordio.ImportDocument(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d := runner.Reconstruct(ctx, doc)

	if output == "" {
		f, err := recordio.ParseFormat(format)
		if err != nil {
			return err
		}
		return recordio.WriteRecords(d, os.Stdout, f)
	}

	if err := recordio.ExportRecords(d, output); err != nil {
		return err
	}
	printSuccess("Recovered %d layers, %d boxes, %d components", len(d.Layers), len(d.Boxes), len(d.Components))
	printFile(output)
	printNewline()
	printNextStep("Render it again", appName+" render "+output)
	return nil
}
