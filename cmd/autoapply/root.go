package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"letraz-autoapply/internal/apply"
	"letraz-autoapply/internal/browser"
	"letraz-autoapply/internal/config"
	"letraz-autoapply/internal/discovery"
	"letraz-autoapply/internal/form"
	"letraz-autoapply/internal/linkedin"
	"letraz-autoapply/internal/logging"
	"letraz-autoapply/internal/validation"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "autoapply",
	Short:        "Find LinkedIn postings and fill in their Easy Apply forms",
	Long:         "autoapply searches LinkedIn with a logged-in browser profile, filters postings by title, description and language, and applies through Easy Apply.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: AUTOAPPLY_CONFIG env var or configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path, parses it and starts logging.
// Priority: explicit path > AUTOAPPLY_CONFIG env var > configs/config.yaml
func loadConfig() (*config.Config, logging.Logger, error) {
	path := cfgPath
	if path == "" {
		path = os.Getenv("AUTOAPPLY_CONFIG")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	if err := logging.InitializeLogging(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, logging.GetGlobalLogger(), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// openBrowser launches the browser; the caller must Close the manager
func openBrowser(ctx context.Context, cfg *config.Config, logger logging.Logger) (*browser.BrowserManager, *browser.RodSession, error) {
	manager := browser.NewBrowserManager(cfg, logger.WithField("component", "browser"))
	session, err := manager.Open(ctx)
	if err != nil {
		manager.Close()
		return nil, nil, err
	}
	return manager, session, nil
}

func newCursor(session browser.Session, cfg *config.Config, logger logging.Logger) (*discovery.Cursor, error) {
	criteria := cfg.SearchCriteria()
	if err := validation.Struct(criteria); err != nil {
		return nil, err
	}
	matcher, err := discovery.NewMatcher(criteria, nil)
	if err != nil {
		return nil, err
	}
	return discovery.NewCursor(session, criteria, matcher, discovery.OptionsFromConfig(cfg), logger.WithField("component", "discovery")), nil
}

func newApplier(session browser.Session, cfg *config.Config, logger logging.Logger) *apply.Applier {
	logger = logger.WithField("component", "apply")
	filler := form.NewFiller(linkedin.Selectors, logger)
	advancer := form.NewAdvancer(linkedin.Selectors, cfg.Browser.DefaultTimeout)
	return apply.NewApplier(session, filler, advancer, apply.OptionsFromConfig(cfg), logger)
}
