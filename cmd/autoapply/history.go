package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"letraz-autoapply/internal/logging"
	"letraz-autoapply/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent application attempts from the ledger",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of attempts to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.CloseLogging()

	ctx, stop := signalContext()
	defer stop()

	st, err := store.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-17s %-14s %-40s %s\n", "Attempted", "Outcome", "Title", "Link")
	for _, r := range records {
		fmt.Fprintf(out, "%-17s %-14s %-40s %s\n",
			r.AttemptedAt.Local().Format("2006-01-02 15:04"), r.Outcome, truncate(r.Title, 40), r.Link)
		if r.Error != "" {
			fmt.Fprintf(out, "%17s %s\n", "", r.Error)
		}
	}
	fmt.Fprintf(out, "\n%d attempts (store: %s)\n", len(records), cfg.Store.Driver)
	return nil
}
