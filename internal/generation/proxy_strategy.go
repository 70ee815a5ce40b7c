package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eternisai/fxinsight/internal/insights"
)

const (
	// ProxyStrategyName names the trusted server-side path.
	ProxyStrategyName = "proxy"

	chatPath         = "/api/chat"
	maxResponseBytes = 4 << 20
)

// errNoPoints marks a 2xx proxy answer without a usable points array.
var errNoPoints = errors.New("response has no points array")

type proxyStrategy struct {
	serverURL  string
	httpClient *http.Client
}

// NewProxyStrategy returns the strategy that asks the trusted proxy at serverURL.
func NewProxyStrategy(serverURL string, httpClient *http.Client) Strategy {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &proxyStrategy{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: httpClient,
	}
}

func (s *proxyStrategy) Name() string {
	return ProxyStrategyName
}

func (s *proxyStrategy) Attempt(ctx context.Context, req insights.Request) (insights.Payload, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, canceledOr(ctx, fmt.Errorf("call proxy: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, canceledOr(ctx, fmt.Errorf("read response: %w", err))
	}

	// A cancellation that lands while the body is being read still wins.
	if ctx.Err() != nil {
		return nil, ErrCanceled
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Source: ProxyStrategyName, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	payload, ok := insights.DecodePayload(respBody).(insights.Structured)
	if !ok {
		return nil, errNoPoints
	}

	return payload, nil
}

// canceledOr maps err to ErrCanceled when ctx has been cancelled.
func canceledOr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrCanceled
	}
	return err
}
