// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/shelf/internal/app"
	"github.com/law-makers/shelf/internal/config"
	"github.com/law-makers/shelf/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Collect a retail product catalog and enrich it from web search",
	Long: `Shelf collects product listings from a vendor category page into a CSV
table, then backfills a random sample of rows with an official brand page
and a description snippet from a web search API.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx and returns the process exit code.
// This is called by main.main().
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
		return 1
	}
	return 0
}

func init() {
	// Initialize lazily so -h and --version do not touch configuration
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		log.Debug().Str("command", cmd.Name()).Msg("Application ready")
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a := GetApp(cmd); a != nil {
			_ = a.Close(cmd.Context())
		}
	}

	config.RegisterFlags(rootCmd)
	rootCmd.Flags().BoolP("help", "h", false, "Help for shelf")
	rootCmd.Flags().Bool("version", false, "Version for shelf")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		writeHelp(cmd.OutOrStdout(), cmd)
	})
}

// writeHelp renders colorized help for cmd.
func writeHelp(w io.Writer, cmd *cobra.Command) {
	heading := func(s string) { fmt.Fprintf(w, "\n%s\n", ui.Bold(s)) }

	fmt.Fprintf(w, "\n%s\n", ui.Bold(ui.Highlight(strings.ToUpper(cmd.Name()))))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", cmd.Long)
	}

	heading("Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Highlight(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s\n", ui.Highlight(cmd.CommandPath()), ui.Warn("<command> [flags]"))
	}

	if cmd.HasExample() {
		heading("Examples")
		for _, line := range strings.Split(cmd.Example, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case strings.HasPrefix(line, "#"):
				fmt.Fprintf(w, "  %s\n", ui.Info(line))
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+line))
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		heading("Commands")
		width := 0
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && len(c.Name()) > width {
				width = len(c.Name())
			}
		}
		for _, c := range cmd.Commands() {
			if !c.IsAvailableCommand() || c.Name() == "help" {
				continue
			}
			fmt.Fprintf(w, "  %s%s%s\n", ui.Highlight(c.Name()), strings.Repeat(" ", width-len(c.Name())+2), c.Short)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		heading("Flags")
		fmt.Fprint(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		heading("Global Flags")
		fmt.Fprint(w, cmd.InheritedFlags().FlagUsages())
	}
	fmt.Fprintln(w)
}
