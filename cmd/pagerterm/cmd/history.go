package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagerterm/pagerterm/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent connection attempts",
	Long: `Show the connection attempt log: endpoint, outcome, duration,
bytes received and buffer drops.

Examples:
  pagerterm history              # last 20 attempts
  pagerterm history --limit 50`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete connection attempts past the retention window",
	Args:  cobra.NoArgs,
	RunE:  runHistoryCleanup,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyCleanupCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of attempts to show")
	historyCleanupCmd.Flags().Int("retention-days", history.DefaultCleanupConfig().RetentionDays,
		"delete attempts older than this many days")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer db.Close()

	attempts, err := db.ListRecent(limit)
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}
	if len(attempts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No connection attempts recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tENDPOINT\tOUTCOME\tDURATION\tRX\tDROPS")
	for _, a := range attempts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			a.StartedAt.Local().Format("2006-01-02 15:04:05"),
			a.Endpoint,
			a.Outcome,
			a.EndedAt.Sub(a.StartedAt).Round(time.Millisecond),
			a.BytesRx,
			a.Drops,
		)
	}
	return w.Flush()
}

func runHistoryCleanup(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("retention-days")

	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer db.Close()

	deleted, err := db.Cleanup(history.CleanupConfig{RetentionDays: days})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d attempts older than %d days.\n", deleted, days)
	return nil
}
