package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/law-makers/shelf/internal/table"
	"github.com/law-makers/shelf/internal/ui"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Convert a table to .xlsx or .json",
	Long: `Converts a collected or enriched CSV table. The format follows the output
extension: .xlsx writes a single-sheet workbook, .json an array of objects
with null for empty cells, .csv a copy. Existing files are never overwritten.`,
	Example: `  shelf export data/product-data-enriched.csv -o data/products.xlsx`,
	Args:    cobra.ExactArgs(1),
	RunE:    runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Destination file (.xlsx, .json or .csv)")
	_ = exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)

	t, err := a.Store.Read(args[0])
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(exportOutput)); ext {
	case ".xlsx":
		err = table.WriteXLSX(exportOutput, t)
	case ".json":
		err = table.WriteJSON(exportOutput, t)
	case ".csv":
		err = a.Store.Write(exportOutput, t)
	default:
		return fmt.Errorf("unsupported export format %q (use .xlsx, .json or .csv)", ext)
	}
	if err != nil {
		return err
	}

	if !a.Config.Log.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d rows exported to %s\n", ui.Success("✓"), t.Len(), ui.Bold(exportOutput))
	}
	return nil
}
