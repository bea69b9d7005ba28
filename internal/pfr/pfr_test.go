package pfr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-archetypes/internal/position"
)

const passingPage = `<html><body>
<div id="all_passing">
<!--
<table id="passing">
  <thead>
    <tr class="over_header"><th colspan="3"></th><th>Passing</th></tr>
    <tr>
      <th data-stat="ranker">Rk</th><th data-stat="name_display">Player</th><th data-stat="age">Age</th>
      <th data-stat="team">Tm</th><th data-stat="pos">Pos</th><th data-stat="pass_yds">Yds</th>
      <th data-stat="pass_sacked_yds">Yds</th>
    </tr>
  </thead>
  <tbody>
    <tr>
      <th data-stat="ranker">1</th>
      <td data-stat="name_display" data-append-csv="MahoPa00"><a href="/players/M/MahoPa00.htm">Patrick Mahomes</a>*</td>
      <td data-stat="age">28</td><td data-stat="team">KAN</td><td data-stat="pos">QB</td>
      <td data-stat="pass_yds">4,183</td><td data-stat="pass_sacked_yds">197</td>
    </tr>
    <tr class="thead">
      <th>Rk</th><th>Player</th><th>Age</th><th>Tm</th><th>Pos</th><th>Yds</th><th>Yds</th>
    </tr>
    <tr>
      <th data-stat="ranker">2</th>
      <td data-stat="name_display"><a href="/players/A/AlleJo02.htm">Josh Allen</a>+</td>
      <td data-stat="age">28</td><td data-stat="team">BUF</td><td data-stat="pos">QB</td>
      <td data-stat="pass_yds">4,306</td><td data-stat="pass_sacked_yds">152</td>
    </tr>
  </tbody>
</table>
-->
</div>
</body></html>`

func TestParseStatTable(t *testing.T) {
	df, err := ParseStatTable(passingPage, "passing")
	require.NoError(t, err)

	assert.Equal(t, []string{"Rk", "Player", "Age", "Team", "Position", "Yds", "Yds.1", "Player_ID"}, df.Columns())
	require.Equal(t, 3, df.Len())

	assert.Equal(t, "Patrick Mahomes*", df.Record(0).Get("Player").String())
	assert.Equal(t, "MahoPa00", df.Record(0).Get("Player_ID").String())
	assert.Equal(t, "4,183", df.Record(0).Get("Yds").String())
	assert.Equal(t, "197", df.Record(0).Get("Yds.1").String())

	// header-repeat row survives parsing
	assert.Equal(t, "Player", df.Record(1).Get("Player").String())
	assert.True(t, df.Record(1).Get("Player_ID").IsNull())

	// id from the link when there is no data-append-csv
	assert.Equal(t, "AlleJo02", df.Record(2).Get("Player_ID").String())
}

func TestParseStatTable_Missing(t *testing.T) {
	_, err := ParseStatTable(passingPage, "rushing")
	assert.Error(t, err)
}

func TestDedupeHeaders(t *testing.T) {
	got := dedupeHeaders([]string{"Player", "Tm", "Yds", "TD", "Yds", "TD", "Yds", "Ctch%"})
	assert.Equal(t, []string{"Player", "Team", "Yds", "TD", "Yds.1", "TD.1", "Yds.2", "Rec%"}, got)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("garbage"))
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	assert.Greater(t, parseRetryAfter(future), time.Duration(0))
}

func TestBackoff_StaysWithinCeiling(t *testing.T) {
	base, ceiling := 400*time.Millisecond, 6*time.Second
	for _, attempt := range []int{0, 1, 4, 20, 40, 63, 64, 1000} {
		d := backoff(attempt, base, ceiling)
		assert.GreaterOrEqualf(t, d, base, "attempt %d", attempt)
		assert.LessOrEqualf(t, d, ceiling, "attempt %d", attempt)
	}
	assert.Equal(t, ceiling, backoff(64, base, ceiling))
	assert.Less(t, backoff(0, base, ceiling), base+250*time.Millisecond)
}

func fastConfig(hosts ...string) Config {
	return Config{
		BaseURLs:    hosts,
		UserAgent:   "test-agent",
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		RetryBase:   time.Millisecond,
		RetryMax:    time.Millisecond,
		Cooldown:    time.Millisecond,
	}
}

func TestFetchPage_RetriesThenFallsBack(t *testing.T) {
	var wwwCalls int32
	www := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&wwwCalls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer www.Close()

	var gotUA, gotPath string
	aws := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(passingPage))
	}))
	defer aws.Close()

	log, _ := test.NewNullLogger()
	c := NewClient(fastConfig(www.URL, aws.URL), log)
	html, host, err := c.FetchPage(context.Background(), 2024, "passing")
	require.NoError(t, err)

	assert.Equal(t, aws.URL, host)
	assert.Contains(t, html, `id="passing"`)
	assert.Equal(t, int32(3), atomic.LoadInt32(&wwwCalls))
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "/years/2024/passing.htm", gotPath)
}

func TestFetchPage_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(fastConfig(srv.URL), nil)
	html, _, err := c.FetchPage(context.Background(), 2023, "rushing")
	require.NoError(t, err)
	assert.Equal(t, "ok", html)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchPage_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(fastConfig(srv.URL), nil)
	_, _, err := c.FetchPage(context.Background(), 2023, "rushing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCollect_FailuresYieldEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/passing.htm") {
			_, _ = w.Write([]byte(passingPage))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	log, hook := test.NewNullLogger()
	c := NewClient(fastConfig(srv.URL), log)
	got := c.Collect(context.Background(), 2024)

	require.Len(t, got, len(position.All))
	assert.Equal(t, 3, got[position.QB].Len())
	for _, g := range []position.Group{position.RB, position.WRTE, position.Defense} {
		assert.True(t, got[g].IsEmpty(), g)
	}

	warns := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "fetch failed" {
			warns++
		}
	}
	assert.Equal(t, 3, warns)
}

func TestCollect_BreakerSkipsFailingHost(t *testing.T) {
	var wwwCalls int32
	www := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&wwwCalls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer www.Close()
	aws := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/passing.htm") {
			_, _ = w.Write([]byte(passingPage))
			return
		}
		http.NotFound(w, r)
	}))
	defer aws.Close()

	cfg := fastConfig(www.URL, aws.URL)
	cfg.MaxAttempts = 1
	cfg.BreakerFailures = 2
	log, hook := test.NewNullLogger()
	got := NewClient(cfg, log).Collect(context.Background(), 2024)

	assert.Equal(t, 3, got[position.QB].Len())
	// two failed pages open the breaker, the last two pages go straight to aws
	assert.Equal(t, int32(2), atomic.LoadInt32(&wwwCalls))

	var tripped bool
	for _, e := range hook.AllEntries() {
		if e.Message == "host circuit breaker state changed" && e.Data["to_state"] == "open" {
			tripped = true
		}
	}
	assert.True(t, tripped)
}

func TestFetchPage_MissingPageKeepsHostClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := fastConfig(srv.URL)
	cfg.BreakerFailures = 1
	c := NewClient(cfg, nil)
	for i := 0; i < 3; i++ {
		_, _, err := c.FetchPage(context.Background(), 2024, "defense")
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.Code)
	}
}

func TestCollect_SpacesFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := fastConfig(srv.URL)
	cfg.Delay = 20 * time.Millisecond
	c := NewClient(cfg, nil)

	start := time.Now()
	c.Collect(context.Background(), 2024)
	// four pages, the first is immediate
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "passing.htm"), []byte(passingPage), 0o644))

	log, _ := test.NewNullLogger()
	got := DirSource{Dir: dir, Log: log}.Collect(context.Background(), 2024)
	assert.Equal(t, 3, got[position.QB].Len())
	assert.True(t, got[position.RB].IsEmpty())
	assert.True(t, got[position.Defense].IsEmpty())
}
