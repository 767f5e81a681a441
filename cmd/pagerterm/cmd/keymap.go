package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var keymapCmd = &cobra.Command{
	Use:   "keymap",
	Short: "Inspect the active keymap",
}

var keymapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active keymap table",
	Long: `Print the keymap the client would use: the file named in the
configuration, or the built-in table when none is configured.

Examples:
  pagerterm keymap show
  pagerterm keymap show --yaml > ~/.config/pagerterm/keymap.yaml`,
	Args: cobra.NoArgs,
	RunE: runKeymapShow,
}

func init() {
	rootCmd.AddCommand(keymapCmd)
	keymapCmd.AddCommand(keymapShowCmd)
	keymapShowCmd.Flags().Bool("yaml", false, "emit the table as a reusable keymap file")
}

func runKeymapShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	table, err := loadKeymap(cfg, newLogger(cmd))
	if err != nil {
		return err
	}

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		data, err := yaml.Marshal(table)
		if err != nil {
			return fmt.Errorf("encode keymap: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Keymap: %s\n\n", table.Name)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNORMAL\tSHIFT\tCODE")
	for _, k := range table.Keys {
		if k.HasCode() {
			fmt.Fprintf(w, "%s\t\t\t0x%02x\n", k.ID, k.Code)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", k.ID, k.Normal, k.Shift)
	}
	fmt.Fprintln(w, "\nMODIFIER\tMODE")
	for _, m := range table.Modifiers {
		fmt.Fprintf(w, "%s\t%s\n", m.ID, m.Mode)
	}
	return w.Flush()
}
