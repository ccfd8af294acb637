package cli

import (
	"github.com/law-makers/shelf/internal/table"
	"github.com/spf13/cobra"
)

var showLimit int

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print a collected or enriched table",
	Example: `  shelf show data/product-data.csv
  shelf show data/product-data-enriched.csv --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := GetApp(cmd).Store.Read(args[0])
		if err != nil {
			return err
		}
		table.Render(cmd.OutOrStdout(), t, showLimit)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 20, "Maximum rows to print (0 for all)")
}
