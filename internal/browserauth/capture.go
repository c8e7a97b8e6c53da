// Package browserauth captures a Discord user token through a real browser
// login. A visible Chrome is opened on the login page; once the web app starts
// talking to the API, the authorization header of its own requests is the
// token.
package browserauth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"discofetch/internal/domain"
)

const loginURL = "https://discord.com/login"

// Capture drives the browser-based login flow.
type Capture struct {
	profileDir string
	logger     *slog.Logger
}

// New builds a Capture with a persistent Chrome profile so a second login is
// usually a no-op.
func New(profileDir string, logger *slog.Logger) *Capture {
	if profileDir == "" {
		home, _ := os.UserHomeDir()
		profileDir = filepath.Join(home, ".discofetch", "chrome-profile")
	}
	return &Capture{profileDir: profileDir, logger: logger}
}

// Token opens a visible browser on the Discord login page and waits until the
// web app issues an authenticated API request, then returns that token.
// The wait is bounded by timeout.
func (c *Capture) Token(ctx context.Context, timeout time.Duration) (string, error) {
	if err := os.MkdirAll(c.profileDir, 0o700); err != nil {
		return "", fmt.Errorf("create browser profile dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(c.profileDir),
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.UserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	tokenCh := make(chan string, 1)
	chromedp.ListenTarget(taskCtx, func(ev any) {
		e, ok := ev.(*network.EventRequestWillBeSentExtraInfo)
		if !ok {
			return
		}
		for name, value := range e.Headers {
			if !strings.EqualFold(name, "authorization") {
				continue
			}
			tok, _ := value.(string)
			tok = domain.NormalizeToken(tok)
			// Bot and bearer credentials are not user tokens.
			if tok == "" || strings.HasPrefix(tok, "Bot ") || strings.HasPrefix(tok, "Bearer ") {
				continue
			}
			select {
			case tokenCh <- tok:
			default:
			}
		}
	})

	c.logger.Info("opening browser for Discord login", "url", loginURL)
	if err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(loginURL),
	); err != nil {
		return "", fmt.Errorf("open login page (is Chrome installed?): %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case tok := <-tokenCh:
		c.logger.Info("token captured from browser session")
		return tok, nil
	case <-timer.C:
		return "", fmt.Errorf("no login observed within %s", timeout)
	case <-taskCtx.Done():
		return "", fmt.Errorf("browser closed before login completed: %w", taskCtx.Err())
	}
}
