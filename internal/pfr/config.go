package pfr

import "time"

const (
	BaseWWW = "https://www.pro-football-reference.com"
	BaseAWS = "https://aws.pro-football-reference.com"
)

const defaultUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119 Safari/537.36 (+stats-research)"

// Config holds everything the fetcher needs. It replaces shared session
// state: two clients with different configs never affect each other.
type Config struct {
	// Hosts tried in order for every page.
	BaseURLs  []string
	UserAgent string

	// Delay spaces successive page fetches.
	Delay   time.Duration
	Timeout time.Duration

	// Per-request retry on transport errors, 429 and 5xx.
	MaxAttempts int
	RetryBase   time.Duration
	RetryMax    time.Duration
	// Cooldown is used on 429 without a Retry-After header.
	Cooldown time.Duration

	// A host that fails BreakerFailures pages in a row is skipped for
	// BreakerOpen. Missing pages do not count.
	BreakerFailures uint32
	BreakerOpen     time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURLs:    []string{BaseWWW, BaseAWS},
		UserAgent:   defaultUA,
		Delay:       2 * time.Second,
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
		RetryBase:   400 * time.Millisecond,
		RetryMax:    6 * time.Second,
		Cooldown:    7 * time.Second,

		BreakerFailures: 3,
		BreakerOpen:     2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.BaseURLs) == 0 {
		c.BaseURLs = d.BaseURLs
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = d.BreakerFailures
	}
	if c.BreakerOpen <= 0 {
		c.BreakerOpen = d.BreakerOpen
	}
	return c
}
