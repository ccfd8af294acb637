package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/law-makers/shelf/internal/auth"
	"github.com/law-makers/shelf/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored search API key",
	Long: `Stores the search API key in the OS keyring. Where no keyring is
available (CI, Codespaces) the key is kept in a private file under ~/.shelf.
CSE_API_KEY, when set, takes precedence over the stored key.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the search API key (prompts when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := GetApp(cmd).Keys()
		if err != nil {
			return err
		}

		value := ""
		if len(args) == 1 {
			value = args[0]
		} else if value, err = readSecret(cmd); err != nil {
			return err
		}

		if err := ks.Set(auth.SearchAPIKey, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s API key saved (%s)\n", ui.Success("✓"), ks.Backend())
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored search API key, masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := GetApp(cmd).Keys()
		if err != nil {
			return err
		}
		v, err := ks.Get(auth.SearchAPIKey)
		if errors.Is(err, auth.ErrNoKey) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info("No API key stored"))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", auth.Mask(v), ks.Backend())
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored search API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := GetApp(cmd).Keys()
		if err != nil {
			return err
		}
		if err := ks.Delete(auth.SearchAPIKey); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s API key removed\n", ui.Success("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyDeleteCmd)
}

// readSecret reads one line from stdin without echo when it is a terminal.
func readSecret(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read key from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}
