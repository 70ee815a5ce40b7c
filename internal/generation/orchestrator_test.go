package generation

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eternisai/fxinsight/internal/credentials"
	"github.com/eternisai/fxinsight/internal/insights"
	"github.com/eternisai/fxinsight/internal/logger"
	"github.com/eternisai/fxinsight/internal/upstream"
)

var log *logger.Logger

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Verbose() {
		log = logger.New(logger.Config{Level: slog.LevelDebug})
	} else {
		log = logger.New(logger.Config{Level: slog.LevelError})
	}

	os.Exit(m.Run())
}

// countingStrategy records how often it ran and returns a fixed result.
type countingStrategy struct {
	name    string
	calls   atomic.Int32
	payload insights.Payload
	err     error
}

func (s *countingStrategy) Name() string { return s.name }

func (s *countingStrategy) Attempt(ctx context.Context, req insights.Request) (insights.Payload, error) {
	s.calls.Add(1)
	return s.payload, s.err
}

func proxyServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

// unreachableURL returns the address of a server that has already been shut down.
func unreachableURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func upstreamServer(t *testing.T, status int, body string) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return upstream.NewClient(upstream.Options{BaseURL: srv.URL + "/v1"}, log)
}

func chatCompletion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func pointsBody(n int) string {
	points := make([]insights.Point, n)
	for i := range points {
		points[i] = insights.Point{Title: fmt.Sprintf("Driver %d", i+1), Explanation: "why"}
	}
	b, _ := json.Marshal(insights.Response{Points: points})
	return string(b)
}

func newRequest(t *testing.T, question string, minBullets int) insights.Request {
	t.Helper()
	req, err := insights.NewRequest(question, minBullets, "balanced", 2)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	return req
}

func TestGenerateHealthyProxy(t *testing.T) {
	var received insights.Request
	url := proxyServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(pointsBody(12))) //nolint:errcheck
	})

	direct := &countingStrategy{name: DirectStrategyName}
	o := NewOrchestrator(log, NewProxyStrategy(url, nil), direct)

	points, err := o.Generate(context.Background(), newRequest(t, "Why did USD strengthen?", 10))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(points) != 12 {
		t.Fatalf("expected 12 points, got %d", len(points))
	}
	for i, p := range points {
		if p.Title != fmt.Sprintf("Driver %d", i+1) {
			t.Errorf("point %d out of order: %q", i, p.Title)
		}
	}
	if direct.calls.Load() != 0 {
		t.Errorf("direct strategy should not run after a proxy success")
	}
	if received.Question != "Why did USD strengthen?" || received.MinBullets != 10 || received.Style != insights.StyleBalanced || received.Detail != 2 {
		t.Errorf("unexpected proxy request: %+v", received)
	}
}

func TestGenerateNoServerNoCredential(t *testing.T) {
	client := upstreamServer(t, http.StatusOK, chatCompletion("unused"))
	o := NewOrchestrator(log,
		NewProxyStrategy(unreachableURL(), nil),
		NewDirectStrategy(client, credentials.Static{}),
	)

	_, err := o.Generate(context.Background(), newRequest(t, "q", 10))

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T: %v", err, err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
	if cfgErr.Reason != "no server and no credential" {
		t.Errorf("unexpected reason %q", cfgErr.Reason)
	}
	if len(genErr.Attempts) != 2 {
		t.Errorf("expected two attempts, got %v", genErr.Attempts)
	}
}

func TestGenerateDirectFallbackParsesText(t *testing.T) {
	client := upstreamServer(t, http.StatusOK, chatCompletion("- Rates: explanation one\n- Inflation: explanation two"))
	o := NewOrchestrator(log,
		NewProxyStrategy(unreachableURL(), nil),
		NewDirectStrategy(client, credentials.Static{APIKey: "sk-test"}),
	)

	points, err := o.Generate(context.Background(), newRequest(t, "q", 10))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(points) != 10 {
		t.Fatalf("expected 10 points, got %d", len(points))
	}
	if points[0] != (insights.Point{Title: "Rates", Explanation: "explanation one"}) {
		t.Errorf("unexpected first point: %+v", points[0])
	}
	if points[1] != (insights.Point{Title: "Inflation", Explanation: "explanation two"}) {
		t.Errorf("unexpected second point: %+v", points[1])
	}
	for i := 2; i < 10; i++ {
		if points[i].Title != fmt.Sprintf("Additional consideration %d", i+1) {
			t.Errorf("unexpected filler %d: %q", i, points[i].Title)
		}
	}
}

func TestGenerateDirectUpstreamError(t *testing.T) {
	client := upstreamServer(t, http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	o := NewOrchestrator(log,
		NewProxyStrategy(unreachableURL(), nil),
		NewDirectStrategy(client, credentials.Static{APIKey: "sk-test"}),
	)

	_, err := o.Generate(context.Background(), newRequest(t, "q", 10))

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T: %v", err, err)
	}
	if upErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", upErr.StatusCode)
	}
	if upErr.Source != DirectStrategyName {
		t.Errorf("expected direct source, got %s", upErr.Source)
	}
	if upErr.Body != `{"error":{"message":"Rate limit reached","type":"requests"}}` {
		t.Errorf("expected the raw upstream body, got %q", upErr.Body)
	}
}

func TestGenerateDirectUpstreamPlainBody(t *testing.T) {
	client := upstreamServer(t, http.StatusServiceUnavailable, "upstream overloaded")
	o := NewOrchestrator(log, NewDirectStrategy(client, credentials.Static{APIKey: "sk-test"}))

	_, err := o.Generate(context.Background(), newRequest(t, "q", 10))

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T: %v", err, err)
	}
	if upErr.Body != "upstream overloaded" {
		t.Errorf("expected body %q, got %q", "upstream overloaded", upErr.Body)
	}
}

func TestGenerateProxyFailuresFallThrough(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server_error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Server missing OPENAI_API_KEY"}`)) //nolint:errcheck
		},
		"missing_points": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"answer":"none"}`)) //nolint:errcheck
		},
		"not_json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>index</html>`)) //nolint:errcheck
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			direct := &countingStrategy{
				name:    DirectStrategyName,
				payload: insights.Structured{Points: []insights.Point{{Title: "From direct"}}},
			}
			o := NewOrchestrator(log, NewProxyStrategy(proxyServer(t, handler), nil), direct)

			points, err := o.Generate(context.Background(), newRequest(t, "q", 10))
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if direct.calls.Load() != 1 {
				t.Errorf("expected direct strategy to run once, ran %d times", direct.calls.Load())
			}
			if len(points) != 10 || points[0].Title != "From direct" {
				t.Errorf("unexpected points: %+v", points)
			}
		})
	}
}

func TestGenerateCanceledDuringProxy(t *testing.T) {
	started := make(chan struct{})
	url := proxyServer(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	direct := &countingStrategy{name: DirectStrategyName, payload: insights.RawText{Content: "- A: b"}}
	o := NewOrchestrator(log, NewProxyStrategy(url, nil), direct)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := o.Generate(ctx, newRequest(t, "q", 10))
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if direct.calls.Load() != 0 {
		t.Errorf("direct strategy must not run after cancellation")
	}
}

func TestGenerateCanceledDuringDirect(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := upstream.NewClient(upstream.Options{BaseURL: srv.URL + "/v1"}, log)
	o := NewOrchestrator(log,
		&countingStrategy{name: ProxyStrategyName, err: errors.New("proxy down")},
		NewDirectStrategy(client, credentials.Static{APIKey: "sk-test"}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := o.Generate(ctx, newRequest(t, "q", 10))
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
}

func TestGenerateCanceledBeforeStart(t *testing.T) {
	proxy := &countingStrategy{name: ProxyStrategyName}
	direct := &countingStrategy{name: DirectStrategyName}
	o := NewOrchestrator(log, proxy, direct)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Generate(ctx, newRequest(t, "q", 10))
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if proxy.calls.Load() != 0 || direct.calls.Load() != 0 {
		t.Errorf("no strategy should run on a cancelled context")
	}
}

// cancelAfterHeaders cancels the caller's context as soon as response headers arrive.
type cancelAfterHeaders struct {
	cancel context.CancelFunc
}

func (rt *cancelAfterHeaders) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(req)
	rt.cancel()
	return resp, err
}

func TestGenerateCancellationAfterHeadersDiscardsPayload(t *testing.T) {
	url := proxyServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pointsBody(10))) //nolint:errcheck
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	direct := &countingStrategy{name: DirectStrategyName}
	httpClient := &http.Client{Transport: &cancelAfterHeaders{cancel: cancel}}
	o := NewOrchestrator(log, NewProxyStrategy(url, httpClient), direct)

	points, err := o.Generate(ctx, newRequest(t, "q", 10))
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if points != nil {
		t.Errorf("expected parsed payload to be discarded, got %d points", len(points))
	}
	if direct.calls.Load() != 0 {
		t.Errorf("direct strategy must not run after cancellation")
	}
}

func TestGenerateTimeoutIsCancellation(t *testing.T) {
	url := proxyServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	direct := &countingStrategy{name: DirectStrategyName}
	o := NewOrchestrator(log, NewProxyStrategy(url, nil), direct)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := o.Generate(ctx, newRequest(t, "q", 10))
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
}

// The server pads to its own floor of 10; a client asking for more pads again
// and its own floor is what the caller sees.
func TestGenerateClientFloorWins(t *testing.T) {
	url := proxyServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pointsBody(10))) //nolint:errcheck
	})

	o := NewOrchestrator(log, NewProxyStrategy(url, nil))

	points, err := o.Generate(context.Background(), newRequest(t, "q", 15))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(points) != 15 {
		t.Fatalf("expected 15 points, got %d", len(points))
	}
	if points[10].Title != "Additional consideration 11" {
		t.Errorf("unexpected first client filler: %q", points[10].Title)
	}
}

func TestGenerateNoStrategies(t *testing.T) {
	_, err := NewOrchestrator(log).Generate(context.Background(), newRequest(t, "q", 10))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected *ConfigError, got %v", err)
	}
}

func TestGenerateNilPayloadFallsThrough(t *testing.T) {
	empty := &countingStrategy{name: "empty"}
	next := &countingStrategy{name: "next", payload: insights.RawText{Content: `{"points":[{"title":"A","explanation":"a"}]}`}}

	points, err := NewOrchestrator(log, empty, next).Generate(context.Background(), newRequest(t, "q", 10))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(points) != 10 || points[0].Title != "A" {
		t.Errorf("expected the next strategy's points, got %+v", points)
	}
	if empty.calls.Load() != 1 || next.calls.Load() != 1 {
		t.Errorf("expected one call each, got %d and %d", empty.calls.Load(), next.calls.Load())
	}
}

func TestGenerateNilPayloadIsDecodeError(t *testing.T) {
	_, err := NewOrchestrator(log, &countingStrategy{name: "empty"}).Generate(context.Background(), newRequest(t, "q", 10))

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) || len(genErr.Attempts) != 1 {
		t.Errorf("expected a GenerationError with one attempt, got %v", err)
	}
}
