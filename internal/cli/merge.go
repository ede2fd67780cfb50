package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdraw/pkg/drawio"
	recordio "github.com/matzehuels/archdraw/pkg/io"
)

type mergeOpts struct {
	output     string
	dx, dy     float64
	compressed bool
}

// mergeCommand creates the merge command for composing two documents.
func (c *CLI) mergeCommand() *cobra.Command {
	var opts mergeOpts

	cmd := &cobra.Command{
		Use:   "merge [base] [addition]",
		Short: "Merge one draw.io document into another",
		Long: `Merge one draw.io document into another.

Cells of the addition are renumbered after the base's highest id and shifted
so the addition sits 100px right of the base's right edge. Use --dx and --dy
to place it explicitly.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mopts []drawio.MergeOption
			if cmd.Flags().Changed("dx") || cmd.Flags().Changed("dy") {
				mopts = append(mopts, drawio.WithOffset(opts.dx, opts.dy))
			}
			return c.runMerge(cmd.Context(), args[0], args[1], opts, mopts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <base>.merged.drawio)")
	cmd.Flags().Float64Var(&opts.dx, "dx", 0, "horizontal offset of the addition")
	cmd.Flags().Float64Var(&opts.dy, "dy", 0, "vertical offset of the addition")
	cmd.Flags().BoolVar(&opts.compressed, "compressed", false, "deflate the diagram payload")

	cmd.ValidArgsFunction = documentFileCompletion

	return cmd
}

func (c *CLI) runMerge(ctx context.Context, basePath, addPath string, opts mergeOpts, mopts []drawio.MergeOption) error {
	base, err := recordio.ImportDocument(basePath)
	if err != nil {
		return err
	}
	addition, err := recordio.ImportDocument(addPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	merged := runner.Merge(ctx, base, addition, mopts...)

	outputPath := opts.output
	if outputPath == "" {
		outputPath = withExt(basePath, ".merged.drawio")
	}
	if err := recordio.ExportDocument(merged, outputPath, opts.compressed); err != nil {
		return err
	}

	printSuccess("Merged %d + %d cells", base.Len(), addition.Len())
	printFile(outputPath)
	return nil
}
