package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/eternisai/fxinsight/internal/credentials"
	"github.com/eternisai/fxinsight/internal/insights"
	"github.com/eternisai/fxinsight/internal/upstream"
)

// DirectStrategyName names the client-side path that calls the upstream with a stored credential.
const DirectStrategyName = "direct"

const noCredentialReason = "no server and no credential"

// Completer issues a chat completion. *upstream.Client implements it.
type Completer interface {
	Complete(ctx context.Context, call upstream.Call) (string, error)
}

type directStrategy struct {
	completer Completer
	creds     credentials.Reader
}

// NewDirectStrategy returns the strategy that calls the upstream directly.
// Credentials are read on every attempt so a settings change applies to the next call.
func NewDirectStrategy(completer Completer, creds credentials.Reader) Strategy {
	return &directStrategy{
		completer: completer,
		creds:     creds,
	}
}

func (s *directStrategy) Name() string {
	return DirectStrategyName
}

func (s *directStrategy) Attempt(ctx context.Context, req insights.Request) (insights.Payload, error) {
	creds, err := s.creds.Load()
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("load credentials: %v", err)}
	}
	if creds.APIKey == "" {
		return nil, &ConfigError{Reason: noCredentialReason}
	}

	content, err := s.completer.Complete(ctx, upstream.Call{
		APIKey: creds.APIKey,
		Model:  creds.Model,
		Prompt: insights.BuildPrompt(req),
	})
	if ctx.Err() != nil {
		return nil, ErrCanceled
	}
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			return nil, &UpstreamError{Source: DirectStrategyName, StatusCode: statusErr.StatusCode, Body: statusErr.Body}
		}
		return nil, err
	}

	return insights.RawText{Content: content}, nil
}
