package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"letraz-autoapply/internal/logging"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Print matching postings without applying",
	Long:  "Runs the configured search and prints every posting that passes the title, description and language filters.",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "stop after this many matches (0 means no limit)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.CloseLogging()

	ctx, stop := signalContext()
	defer stop()

	manager, session, err := openBrowser(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	cursor, err := newCursor(session, cfg, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	found := 0
	for posting, err := range cursor.All(ctx) {
		if err != nil {
			return err
		}
		found++
		fmt.Fprintf(out, "%-45s %-25s %s\n", truncate(posting.Title, 45), truncate(posting.CompanyName, 25), posting.Link)
		if searchLimit > 0 && found >= searchLimit {
			break
		}
	}

	stats := cursor.Stats()
	fmt.Fprintf(out, "\nMatched %d of %d seen (%d advertised)\n", stats.Matched, stats.Seen, stats.Total)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
