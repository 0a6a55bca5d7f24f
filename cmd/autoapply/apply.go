package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"letraz-autoapply/internal/config"
	"letraz-autoapply/internal/logging"
	"letraz-autoapply/internal/store"
	"letraz-autoapply/pkg/models"
	"letraz-autoapply/pkg/utils"
)

var applySubmit bool

var applyCmd = &cobra.Command{
	Use:   "apply <link>",
	Short: "Apply to a single posting",
	Long:  "Drives the Easy Apply form of one posting. Without --submit (or apply.should_submit) the form is filled but never sent.",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applySubmit, "submit", false, "press the final submit button")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.CloseLogging()

	link := args[0]
	info, err := utils.ParseLinkedInURL(link)
	if err != nil {
		return err
	}
	if info.PublicURL != "" {
		link = info.PublicURL
	}

	profile, err := config.LoadProfile(cfg.Apply.ProfilePath)
	if err != nil {
		return err
	}

	submit := cfg.Apply.ShouldSubmit
	if cmd.Flags().Changed("submit") {
		submit = applySubmit
	}

	ctx, stop := signalContext()
	defer stop()

	st, err := store.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	manager, session, err := openBrowser(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	start := time.Now()
	outcome, applyErr := newApplier(session, cfg, logger).Apply(ctx, link, profile, submit)

	rec := models.ApplicationRecord{
		JobID:       utils.JobKey(link),
		Link:        link,
		Outcome:     outcome,
		RunID:       utils.GenerateRunID(),
		AttemptedAt: start,
	}
	if applyErr != nil {
		rec.Error = applyErr.Error()
	}
	if err := st.Record(ctx, rec); err != nil {
		logger.Warn("Failed to record application attempt", map[string]interface{}{
			"error": err.Error(),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", outcome, utils.FormatDuration(time.Since(start)), link)
	return applyErr
}
