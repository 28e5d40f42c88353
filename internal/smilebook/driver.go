package smilebook

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/wolfman30/dental-booking-bridge/internal/automation"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

const defaultNavTimeout = 30 * time.Second

// DriverConfig tunes the playwright driver.
type DriverConfig struct {
	Headless bool
	// NavTimeout caps each navigation, networkidle included.
	NavTimeout time.Duration
	Logger     *logging.Logger
}

// Driver launches real browser sessions against SmileBook's hosted booking
// pages. One playwright process is shared; every Acquire gets its own
// browser, context, and page so attempts cannot see each other's state.
type Driver struct {
	headless   bool
	navTimeout time.Duration
	logger     *logging.Logger

	mu sync.Mutex
	pw *playwright.Playwright
}

var _ automation.Launcher = (*Driver)(nil)

// NewDriver builds a driver; the playwright process starts lazily on first
// Acquire so construction never needs browsers installed.
func NewDriver(cfg DriverConfig) *Driver {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = defaultNavTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Driver{
		headless:   cfg.Headless,
		navTimeout: cfg.NavTimeout,
		logger:     cfg.Logger,
	}
}

// runtime starts (once) and returns the shared playwright process.
func (d *Driver) runtime() (*playwright.Playwright, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pw != nil {
		return d.pw, nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("smilebook: install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("smilebook: start playwright: %w", err)
	}

	d.logger.Info("playwright runtime started", "headless", d.headless)
	d.pw = pw
	return pw, nil
}

// Acquire launches a fresh browser session.
func (d *Driver) Acquire(ctx context.Context) (automation.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := d.runtime()
	if err != nil {
		return nil, err
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.headless),
	})
	if err != nil {
		return nil, fmt.Errorf("smilebook: launch chromium: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1280, Height: 900},
	})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("smilebook: create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("smilebook: open page: %w", err)
	}

	return &pageSession{
		page:       page,
		context:    browserCtx,
		browser:    browser,
		navTimeout: d.navTimeout,
	}, nil
}

// Shutdown stops the shared playwright process. Safe to call when it never
// started.
func (d *Driver) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pw == nil {
		return nil
	}
	err := d.pw.Stop()
	d.pw = nil
	if err != nil {
		return fmt.Errorf("smilebook: stop playwright: %w", err)
	}
	return nil
}

// pageSession is one booking attempt's page. Close tears down page, context,
// and browser in that order, once.
type pageSession struct {
	page       playwright.Page
	context    playwright.BrowserContext
	browser    playwright.Browser
	navTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

var _ automation.Session = (*pageSession)(nil)

func (s *pageSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.navTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("smilebook: goto booking page: %w", err)
	}
	return nil
}

func (s *pageSession) Locator() automation.Locator {
	return &formLocator{page: s.page}
}

func (s *pageSession) PageText() (string, error) {
	body, err := s.page.QuerySelector("body")
	if err != nil {
		return "", fmt.Errorf("smilebook: query body: %w", err)
	}
	if body == nil {
		return "", nil
	}
	text, err := body.TextContent()
	if err != nil {
		return "", fmt.Errorf("smilebook: read page text: %w", err)
	}
	return text, nil
}

func (s *pageSession) Close() error {
	s.closeOnce.Do(func() {
		// Keep tearing down even when one layer fails; report the first error.
		if err := s.page.Close(); err != nil {
			s.closeErr = err
		}
		if err := s.context.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
		if err := s.browser.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}
