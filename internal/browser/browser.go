package browser

import (
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
)

// DefaultUserAgent is a desktop Chrome UA; FBref serves a challenge page to
// the stock HeadlessChrome one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// Config controls how the Chromium instance is launched.
type Config struct {
	Headless  bool
	NoSandbox bool
	ProxyURL  string
	UserAgent string
	Bin       string // optional browser binary, downloaded by rod when empty
}

// DefaultConfig returns the headless, sandbox-less setup used for scraping.
func DefaultConfig() Config {
	return Config{
		Headless:  true,
		NoSandbox: true,
		UserAgent: DefaultUserAgent,
	}
}

// Browser wraps a rod.Browser together with the launcher that owns its process.
type Browser struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	cfg       Config
	closeOnce sync.Once
	closeErr  error
}

// New launches Chromium and connects to it.
func New(cfg Config) (*Browser, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("user-agent", cfg.UserAgent)

	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errors.Wrap(err, "failed to launch browser")
	}

	rb := rod.New().ControlURL(controlURL)
	if err := rb.Connect(); err != nil {
		l.Kill()
		return nil, errors.Wrap(err, "failed to connect to browser")
	}

	return &Browser{
		browser:  rb,
		launcher: l,
		cfg:      cfg,
	}, nil
}

// NewPage opens a tab with the configured UA and navigator.webdriver hidden.
func (b *Browser) NewPage() (*rod.Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create page")
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.cfg.UserAgent}); err != nil {
		_ = page.Close()
		return nil, errors.Wrap(err, "failed to set user agent")
	}
	if _, err := page.EvalOnNewDocument(hideWebdriver); err != nil {
		_ = page.Close()
		return nil, errors.Wrap(err, "failed to install webdriver shim")
	}

	return page, nil
}

// Close shuts the browser down and kills its process. Only the first call
// does any work.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		if b.browser != nil {
			b.closeErr = b.browser.Close()
		}
		if b.launcher != nil {
			b.launcher.Kill()
		}
	})
	return b.closeErr
}
