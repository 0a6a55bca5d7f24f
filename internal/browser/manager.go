package browser

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"letraz-autoapply/internal/config"
	"letraz-autoapply/internal/logging/types"
)

// BrowserManager launches the browser against the logged-in profile and
// hands out the single page the run drives
type BrowserManager struct {
	config   *config.Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	lock     *ProfileLock
	mu       sync.Mutex
	logger   types.Logger
}

// NewBrowserManager creates a new browser manager
func NewBrowserManager(cfg *config.Config, logger types.Logger) *BrowserManager {
	l := launcher.New().
		Headless(cfg.Browser.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage")

	if cfg.Browser.UserDataDir != "" {
		l = l.UserDataDir(cfg.Browser.UserDataDir)
	}

	if chromePath := getSystemChromePath(cfg.Browser.BinPath); chromePath != "" {
		l = l.Bin(chromePath)
		logger.Info("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	} else {
		logger.Warn("System Chrome not found, Rod will download browser", map[string]interface{}{})
	}

	if cfg.Browser.UserAgent != "" {
		l = l.Set("user-agent", cfg.Browser.UserAgent)
	}

	return &BrowserManager{
		config:   cfg,
		launcher: l,
		logger:   logger,
	}
}

// Open locks the profile, launches the browser and returns a session on a
// fresh page. Calling Open twice returns the same session.
func (bm *BrowserManager) Open(ctx context.Context) (*RodSession, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.page != nil {
		return NewRodSession(bm.page, bm.config.Browser.DefaultTimeout), nil
	}

	if bm.config.Browser.UserDataDir != "" {
		lock, err := AcquireProfileLock(bm.config.Browser.UserDataDir)
		if err != nil {
			return nil, err
		}
		bm.lock = lock
	}

	browser, err := bm.createBrowser(ctx)
	if err != nil {
		bm.releaseLock()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	page, err := bm.createPage(browser)
	if err != nil {
		_ = browser.Close()
		bm.releaseLock()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	bm.browser = browser
	bm.page = page
	return NewRodSession(page, bm.config.Browser.DefaultTimeout), nil
}

func (bm *BrowserManager) createBrowser(ctx context.Context) (*rod.Browser, error) {
	url, err := bm.launcher.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	bm.logger.Info("Browser launched", map[string]interface{}{
		"headless":      bm.config.Browser.Headless,
		"user_data_dir": bm.config.Browser.UserDataDir,
	})
	return browser, nil
}

func (bm *BrowserManager) createPage(browser *rod.Browser) (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if bm.config.Browser.StealthMode {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, err
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		bm.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if bm.config.Browser.UserAgent != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      bm.config.Browser.UserAgent,
			AcceptLanguage: "en-US,en;q=0.9",
		})
		if err != nil {
			bm.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return page, nil
}

// IsHealthy reports whether the browser is still reachable
func (bm *BrowserManager) IsHealthy() bool {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.browser == nil {
		return false
	}
	_, err := bm.browser.Pages()
	return err == nil
}

// Close shuts the browser down and releases the profile lock
func (bm *BrowserManager) Close() {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.browser != nil {
		if err := bm.browser.Close(); err != nil {
			bm.logger.Warn("Failed to close browser", map[string]interface{}{
				"error": err.Error(),
			})
		}
		bm.browser = nil
		bm.page = nil
	}
	bm.launcher.Cleanup()
	bm.releaseLock()
	bm.logger.Info("Browser manager cleanup completed")
}

func (bm *BrowserManager) releaseLock() {
	if bm.lock == nil {
		return
	}
	if err := bm.lock.Release(); err != nil {
		bm.logger.Warn("Failed to release profile lock", map[string]interface{}{
			"error": err.Error(),
		})
	}
	bm.lock = nil
}

// getSystemChromePath returns the configured binary, then CHROME_BIN or
// CHROME_PATH, then the first common install location that exists
func getSystemChromePath(configured string) string {
	candidates := []string{configured, os.Getenv("CHROME_BIN"), os.Getenv("CHROME_PATH")}
	candidates = append(candidates,
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"C:\\Program Files\\Google\\Chrome\\Application\\chrome.exe",
		"C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe",
	)

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
