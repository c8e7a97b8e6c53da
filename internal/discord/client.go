// Package discord is a client for the Discord HTTP API (v9) authenticated
// with a user token, covering exactly what the fetch pipeline needs: identity
// check, guild/channel/DM listing, and backward message pagination.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"discofetch/internal/domain"
	"discofetch/internal/stats"
)

const (
	// DefaultBaseURL is the production Discord API endpoint.
	DefaultBaseURL = "https://discord.com/api/v9"

	// maxPageSize is the hard per-request cap imposed by the API.
	maxPageSize = 100

	// transientBackoff is the pause before retrying network errors and 5xx.
	transientBackoff = time.Second
)

// Client issues authenticated requests against the Discord API. All calls are
// sequential; the pacer enforces a minimum delay between requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	pageSize   int
	maxRetries int
	pacer      *Pacer
	stats      *stats.Collector
	logger     *slog.Logger

	// sleep is swappable so retry timing can be observed in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Options configures a Client. Zero values fall back to production defaults.
type Options struct {
	Token           string
	BaseURL         string
	PageSize        int
	MaxRetries      int
	MinRequestDelay time.Duration
	Timeout         time.Duration
	HTTPClient      *http.Client // override for tests
	Stats           *stats.Collector
	Logger          *slog.Logger
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PageSize <= 0 || opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = newHTTPClient(opts.Timeout)
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewCollector()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    opts.BaseURL,
		token:      domain.NormalizeToken(opts.Token),
		pageSize:   opts.PageSize,
		maxRetries: opts.MaxRetries,
		pacer:      NewPacer(opts.MinRequestDelay),
		stats:      opts.Stats,
		logger:     opts.Logger,
		sleep:      sleepCtx,
	}
}

// newHTTPClient returns a pooled HTTP client sized for a single sequential
// request stream.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Stats returns the session counters this client records into.
func (c *Client) Stats() *stats.Collector { return c.stats }

// setHeaders attaches the authorization header plus the browser-mimicking set
// the Discord web client sends.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36")
	req.Header.Set("X-Discord-Locale", "en-US")
}

// get issues an authenticated GET and decodes the JSON response into out.
// 429 responses wait for the server-specified interval and retry the same
// request; network errors and 5xx retry after a short fixed pause. Both are
// bounded by maxRetries, after which 429 escalates to ErrSkippable.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		c.setHeaders(req)

		c.stats.IncRequests()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries {
				c.logger.Warn("request failed, will retry", "endpoint", endpoint, "error", err)
				c.stats.IncRetries()
				if serr := c.sleep(ctx, transientBackoff); serr != nil {
					return serr
				}
				continue
			}
			return fmt.Errorf("request %s failed after %d retries: %w", endpoint, c.maxRetries, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s response: %w", endpoint, err)
			}
			return nil

		case resp.StatusCode == http.StatusUnauthorized:
			drain(resp)
			return ErrUnauthorized

		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
			drain(resp)
			return fmt.Errorf("%w: HTTP %d on %s", ErrSkippable, resp.StatusCode, endpoint)

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp)
			drain(resp)
			c.stats.IncRateLimitWaits()
			if attempt < c.maxRetries {
				c.logger.Warn("rate limited, retrying", "endpoint", endpoint, "retry_after", wait)
				c.stats.IncRetries()
				if serr := c.sleep(ctx, wait); serr != nil {
					return serr
				}
				continue
			}
			return fmt.Errorf("%w: still rate limited on %s after %d retries", ErrSkippable, endpoint, c.maxRetries)

		case resp.StatusCode >= 500:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Message: string(body)}
			if attempt < c.maxRetries {
				c.logger.Warn("server error, will retry", "endpoint", endpoint, "status", resp.StatusCode)
				c.stats.IncRetries()
				if serr := c.sleep(ctx, transientBackoff); serr != nil {
					return serr
				}
				continue
			}
			return lastErr

		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Message: string(body)}
		}
	}
	return lastErr
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

// retryAfter reads the Retry-After header, in seconds. The API sends
// fractional values; missing or malformed headers fall back to one second.
func retryAfter(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		return time.Second
	}
	return time.Duration(secs * float64(time.Second))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Me verifies the token by fetching the authenticated user.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/@me", nil, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ListGuilds returns the servers the user belongs to, without channels.
func (c *Client) ListGuilds(ctx context.Context) ([]domain.Guild, error) {
	var raw []apiGuild
	if err := c.get(ctx, "/users/@me/guilds", nil, &raw); err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}
	guilds := make([]domain.Guild, 0, len(raw))
	for _, g := range raw {
		guilds = append(guilds, domain.Guild{ID: g.ID, Name: g.Name})
	}
	return guilds, nil
}

// ListGuildChannels returns the text channels of one guild. 403/404 from the
// API surface as ErrSkippable so callers can keep going with other guilds.
func (c *Client) ListGuildChannels(ctx context.Context, guild domain.Guild) ([]domain.Channel, error) {
	var raw []apiChannel
	if err := c.get(ctx, "/guilds/"+guild.ID+"/channels", nil, &raw); err != nil {
		return nil, fmt.Errorf("list channels of %s: %w", guild.Name, err)
	}
	var channels []domain.Channel
	for _, ch := range raw {
		if ch.Type != channelTypeGuildText {
			continue
		}
		channels = append(channels, ch.toDomainGuildChannel(guild))
	}
	return channels, nil
}

// ListDMs returns the user's direct and group DM channels.
func (c *Client) ListDMs(ctx context.Context) ([]domain.Channel, error) {
	var raw []apiChannel
	if err := c.get(ctx, "/users/@me/channels", nil, &raw); err != nil {
		return nil, fmt.Errorf("list DMs: %w", err)
	}
	var channels []domain.Channel
	for _, ch := range raw {
		if ch.Type != channelTypeDM && ch.Type != channelTypeGroupDM {
			continue
		}
		channels = append(channels, ch.toDomainDM())
	}
	return channels, nil
}

// FetchMessages retrieves one page of messages, newest first as the API
// returns them. nextCursor is the id of the oldest message on the page, or ""
// when the page is empty.
func (c *Client) FetchMessages(ctx context.Context, channelID string, limit int, before string) ([]domain.Message, string, error) {
	if limit <= 0 || limit > c.pageSize {
		limit = c.pageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != "" {
		query.Set("before", before)
	}

	var raw []apiMessage
	if err := c.get(ctx, "/channels/"+channelID+"/messages", query, &raw); err != nil {
		return nil, "", err
	}

	msgs := make([]domain.Message, 0, len(raw))
	for _, m := range raw {
		msgs = append(msgs, m.toDomain())
	}

	cursor := ""
	if len(raw) > 0 {
		cursor = raw[len(raw)-1].ID
	}
	return msgs, cursor, nil
}
