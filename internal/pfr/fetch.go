package pfr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

// Source yields the raw season tables for every position group. Groups
// that could not be fetched map to an empty frame.
type Source interface {
	Collect(ctx context.Context, season int) map[position.Group]*frame.Frame
}

// Client fetches PFR season pages over HTTP.
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
	log      logrus.FieldLogger
}

// StatusError is a non-retryable HTTP status. The host did answer, so it does
// not count against the host's breaker.
type StatusError struct {
	Code    int
	URL     string
	BodyLen int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d for %s (body len=%d)", e.Code, e.URL, e.BodyLen)
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Every(cfg.Delay), 1),
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(cfg.BaseURLs)),
		log:      log,
	}
	for _, h := range cfg.BaseURLs {
		c.breakers[h] = c.newBreaker(h)
	}
	return c
}

func (c *Client) newBreaker(host string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     c.cfg.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || errors.As(err, &se) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.WithFields(logrus.Fields{
				"host":       name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("host circuit breaker state changed")
		},
	})
}

// Collect fetches and parses the passing, rushing, receiving and defense
// tables for season. Failures are logged and yield an empty frame.
func (c *Client) Collect(ctx context.Context, season int) map[position.Group]*frame.Frame {
	out := make(map[position.Group]*frame.Frame, len(position.All))
	for _, g := range position.All {
		log := c.log.WithFields(logrus.Fields{"season": season, "group": g})
		html, src, err := c.FetchPage(ctx, season, g.Category())
		if err != nil {
			log.WithError(err).Warn("fetch failed")
			out[g] = frame.Empty()
			continue
		}
		df, err := ParseStatTable(html, g.Category())
		if err != nil {
			log.WithError(err).Warn("parse failed")
			DumpTables(html, log)
			out[g] = frame.Empty()
			continue
		}
		log.WithFields(logrus.Fields{"rows": df.Len(), "host": src}).Info("fetched")
		out[g] = df
	}
	return out
}

// FetchPage downloads /years/{season}/{category}.htm, trying each configured
// host in turn and skipping hosts whose breaker is open. It returns the HTML
// and the host that served it.
func (c *Client) FetchPage(ctx context.Context, season int, category string) (html, host string, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", "", err
	}
	for _, h := range c.cfg.BaseURLs {
		pageURL := fmt.Sprintf("%s/years/%d/%s.htm", h, season, category)
		referer := fmt.Sprintf("%s/years/%d/", h, season)
		c.log.WithField("url", pageURL).Debug("GET")
		v, e := c.breakers[h].Execute(func() (interface{}, error) {
			return c.getText(ctx, pageURL, referer)
		})
		if e == nil {
			return v.(string), h, nil
		}
		if errors.Is(e, gobreaker.ErrOpenState) || errors.Is(e, gobreaker.ErrTooManyRequests) {
			c.log.WithField("host", h).Debug("host skipped")
			e = fmt.Errorf("%s: %w", h, e)
		}
		err = e
	}
	return "", "", err
}

// getText fetches url with the configured UA and retries transport errors,
// 429 and 5xx. Retry-After is honored on 429.
func (c *Client) getText(ctx context.Context, url, referer string) (string, error) {
	var last error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			c.log.WithFields(logrus.Fields{"url": url, "attempt": attempt + 1}).WithError(last).Debug("retrying")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		if referer != "" {
			req.Header.Set("Referer", referer)
		}

		wait := backoff(attempt, c.cfg.RetryBase, c.cfg.RetryMax)
		resp, err := c.http.Do(req)
		if err != nil {
			last = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK && readErr == nil:
				return string(body), nil
			case resp.StatusCode == http.StatusOK:
				last = readErr
			case resp.StatusCode == http.StatusTooManyRequests:
				last = fmt.Errorf("status %d for %s", resp.StatusCode, url)
				if wait = parseRetryAfter(resp.Header.Get("Retry-After")); wait == 0 {
					wait = c.cfg.Cooldown
				}
			case resp.StatusCode >= 500:
				last = fmt.Errorf("status %d for %s", resp.StatusCode, url)
			default:
				return "", &StatusError{Code: resp.StatusCode, URL: url, BodyLen: len(body)}
			}
		}

		if attempt == c.cfg.MaxAttempts-1 {
			break
		}
		if err := sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted retries for %s: %w", url, last)
}

func parseRetryAfter(h string) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff is exponential with up to 250ms jitter, capped at max.
// maxShift keeps base<<attempt far from overflowing.
const maxShift = 20

func backoff(attempt int, base, ceiling time.Duration) time.Duration {
	d := base << min(max(attempt, 0), maxShift)
	if d <= 0 || d > ceiling {
		d = ceiling
	}
	j := time.Duration(rand.Intn(250)) * time.Millisecond
	if d+j > ceiling {
		return ceiling
	}
	return d + j
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
