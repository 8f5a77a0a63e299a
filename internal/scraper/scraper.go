// Package scraper fetches chapter text and a screenshot artifact from a web
// source using a headless Chrome instance.
package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookspin/internal/logging"
	"bookspin/internal/version"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Acquirer fetches raw chapter content for a source locator.
// An empty result or any fetch error means acquisition failed; the caller
// treats that as fatal for the chapter run and does not retry.
type Acquirer interface {
	Acquire(ctx context.Context, locator, label string) (string, error)
}

// Config holds scraper configuration.
type Config struct {
	Headless            bool   `yaml:"headless"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms"`
	ContentContainerID  string `yaml:"content_container_id"`
	RawContentDir       string `yaml:"raw_content_dir"`
	ScreenshotsDir      string `yaml:"screenshots_dir"`
	BrowserBin          string `yaml:"browser_bin"`
}

// DefaultConfig returns sensible defaults. The content container default
// matches wikisource's article body.
func DefaultConfig() Config {
	return Config{
		Headless:            true,
		NavigationTimeoutMs: 30000,
		ContentContainerID:  "mw-content-text",
		RawContentDir:       "data/raw_content",
		ScreenshotsDir:      "data/screenshots",
	}
}

// NavigationTimeout returns the navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// RodScraper acquires chapter content through a rod-controlled browser.
// The browser launches lazily on first use and lives until Close.
type RodScraper struct {
	cfg     Config
	browser *rod.Browser
}

// NewRodScraper creates a scraper with the given configuration.
func NewRodScraper(cfg Config) *RodScraper {
	return &RodScraper{cfg: cfg}
}

func (r *RodScraper) ensureStarted(ctx context.Context) error {
	if r.browser != nil {
		return nil
	}

	launch := launcher.New().Headless(r.cfg.Headless)
	if r.cfg.BrowserBin != "" {
		launch = launch.Bin(r.cfg.BrowserBin)
	}
	controlURL, err := launch.Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	r.browser = browser
	logging.Scraper("Browser connected at %s", controlURL)
	return nil
}

// Acquire navigates to the locator, saves a full-page screenshot under the
// chapter label, extracts the readable text, and persists the raw text file.
// Returns the extracted text, or an error if anything in the chain fails.
func (r *RodScraper) Acquire(ctx context.Context, locator, label string) (string, error) {
	timer := logging.StartTimer(logging.CategoryScraper, "Acquire")
	defer timer.StopWithThreshold(20 * time.Second)

	if err := r.ensureStarted(ctx); err != nil {
		return "", err
	}

	logging.Scraper("Fetching content for %s (%s)", label, locator)

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: locator})
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Timeout(r.cfg.NavigationTimeout()).WaitLoad(); err != nil {
		return "", fmt.Errorf("navigate %s: %w", locator, err)
	}

	if err := r.saveScreenshot(page, label); err != nil {
		// The screenshot is an auxiliary artifact; a failed capture should
		// not abort an otherwise successful acquisition.
		logging.Get(logging.CategoryScraper).Warn("Screenshot failed for %s: %v", label, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}

	text, err := ExtractText(html, r.cfg.ContentContainerID)
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", locator, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no readable content at %s", locator)
	}

	if err := r.saveRawContent(label, text); err != nil {
		logging.Get(logging.CategoryScraper).Warn("Raw content file not written for %s: %v", label, err)
	}

	logging.Scraper("Acquired %d bytes of text for %s", len(text), label)
	return text, nil
}

func (r *RodScraper) saveScreenshot(page *rod.Page, label string) error {
	if r.cfg.ScreenshotsDir == "" {
		return nil
	}
	shot, err := page.Screenshot(true, nil)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.cfg.ScreenshotsDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(r.cfg.ScreenshotsDir, version.ChapterID(label)+".png")
	if err := os.WriteFile(path, shot, 0644); err != nil {
		return err
	}
	logging.Scraper("Screenshot saved to %s", path)
	return nil
}

func (r *RodScraper) saveRawContent(label, text string) error {
	if r.cfg.RawContentDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.cfg.RawContentDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(r.cfg.RawContentDir, version.ChapterID(label)+".txt")
	return os.WriteFile(path, []byte(text), 0644)
}

// Close shuts down the browser, if one was launched.
func (r *RodScraper) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
