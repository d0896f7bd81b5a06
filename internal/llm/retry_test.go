package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

// scriptedClient returns the queued results in order
type scriptedClient struct {
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	resp *Response
	err  error
}

func (c *scriptedClient) Invoke(_ context.Context, _ string, _ ModelTier) (*Response, error) {
	r := c.results[c.calls]
	c.calls++
	return r.resp, r.err
}

func (c *scriptedClient) Close() error { return nil }

// fakeTimer fires immediately and records every requested wait
type fakeTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func (t *fakeTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time { return t.c }

func newTestRetryingClient(next Client) (*RetryingClient, *fakeTimer) {
	timer := &fakeTimer{}
	c := NewRetryingClient(next, nil)
	c.Timer = timer
	return c, timer
}

func TestRetryingClient_RetryAfterSeconds(t *testing.T) {
	header := http.Header{}
	header.Set("retry-after", "2")
	wait, ok := ParseRetryAfter(header)
	require.True(t, ok)

	next := &scriptedClient{results: []scriptedResult{
		{err: &RateLimitError{RetryAfter: wait, HasRetryAfter: true}},
		{resp: &Response{Text: "second answer"}},
	}}
	client, timer := newTestRetryingClient(next)

	resp, err := client.Invoke(context.Background(), "prompt", TierStandard)

	require.NoError(t, err)
	assert.Equal(t, "second answer", resp.Text)
	assert.Equal(t, 2, next.calls)
	require.Len(t, timer.waits, 1)
	assert.InDelta(t, 2*time.Second, timer.waits[0], float64(10*time.Millisecond))
}

func TestRetryingClient_FallbackWaits(t *testing.T) {
	next := &scriptedClient{results: []scriptedResult{
		{err: &RateLimitError{}},
		{err: &TransportError{Status: 503, Message: "unavailable"}},
		{err: errors.New("connection reset")},
		{resp: &Response{Text: "ok"}},
	}}
	client, timer := newTestRetryingClient(next)

	resp, err := client.Invoke(context.Background(), "prompt", TierLite)

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, []time.Duration{DefaultFallbackWait, DefaultFallbackWait, DefaultFallbackWait}, timer.waits)
}

func TestRetryingClient_ExhaustsAfterMaxRetries(t *testing.T) {
	results := make([]scriptedResult, 4)
	for i := range results {
		results[i] = scriptedResult{err: &RateLimitError{RetryAfter: time.Second, HasRetryAfter: true}}
	}
	next := &scriptedClient{results: results}
	client, timer := newTestRetryingClient(next)
	client.MaxRetries = 3

	_, err := client.Invoke(context.Background(), "prompt", TierStandard)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Len(t, timer.waits, 3)

	var rl *RateLimitError
	assert.ErrorAs(t, err, &rl, "the last cause stays reachable")
}

func TestRetryingClient_UnboundedWhenZero(t *testing.T) {
	results := make([]scriptedResult, 0, 51)
	for i := 0; i < 50; i++ {
		results = append(results, scriptedResult{err: errors.New("boom")})
	}
	results = append(results, scriptedResult{resp: &Response{Text: "finally"}})
	next := &scriptedClient{results: results}
	client, timer := newTestRetryingClient(next)
	client.MaxRetries = 0

	resp, err := client.Invoke(context.Background(), "prompt", TierStandard)

	require.NoError(t, err)
	assert.Equal(t, "finally", resp.Text)
	assert.Len(t, timer.waits, 50)
}

func TestRetryingClient_ConfigErrorIsPermanent(t *testing.T) {
	next := &scriptedClient{results: []scriptedResult{
		{err: &ConfigError{Message: "no model configured for tier lite"}},
	}}
	client, timer := newTestRetryingClient(next)

	_, err := client.Invoke(context.Background(), "prompt", TierLite)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 1, next.calls)
	assert.Empty(t, timer.waits)
}

func TestRetryingClient_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	next := &scriptedClient{results: []scriptedResult{{err: errors.New("boom")}}}
	client, _ := newTestRetryingClient(next)

	_, err := client.Invoke(ctx, "prompt", TierLite)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    time.Duration
		wantOK  bool
	}{
		{"seconds", map[string]string{"retry-after": "2"}, 2 * time.Second, true},
		{"fractional seconds", map[string]string{"retry-after": "1.5"}, 1500 * time.Millisecond, true},
		{"milliseconds", map[string]string{"retry-after-ms": "250"}, 250 * time.Millisecond, true},
		{"seconds win", map[string]string{"retry-after": "3", "retry-after-ms": "10"}, 3 * time.Second, true},
		{"garbage falls through to ms", map[string]string{"retry-after": "soon", "retry-after-ms": "10"}, 10 * time.Millisecond, true},
		{"absent", map[string]string{}, 0, false},
		{"negative", map[string]string{"retry-after": "-1"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			for k, v := range tt.headers {
				header.Set(k, v)
			}
			got, ok := ParseRetryAfter(header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyError(t *testing.T) {
	throttled := &googleapi.Error{Code: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"7"}}}
	var rl *RateLimitError
	require.ErrorAs(t, classifyError(throttled), &rl)
	assert.True(t, rl.HasRetryAfter)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)

	var tErr *TransportError
	require.ErrorAs(t, classifyError(&googleapi.Error{Code: http.StatusInternalServerError}), &tErr)
	assert.Equal(t, http.StatusInternalServerError, tErr.Status)

	require.ErrorAs(t, classifyError(errors.New("dial tcp: timeout")), &tErr)
	assert.Equal(t, 0, tErr.Status)
}
