package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/eternisai/fxinsight/internal/errors"
	"github.com/eternisai/fxinsight/internal/insights"
	"github.com/eternisai/fxinsight/internal/logger"
	"github.com/eternisai/fxinsight/internal/metrics"
	"github.com/eternisai/fxinsight/internal/upstream"
	"github.com/gin-gonic/gin"
)

const (
	maxChatBodyBytes = 1 << 20

	// MaxMinBullets caps the point count a single chat request can ask for.
	MaxMinBullets = 100
)

// Completer runs one chat completion against the upstream model API.
type Completer interface {
	Complete(ctx context.Context, call upstream.Call) (string, error)
}

type chatRequest struct {
	Question   string   `json:"question"`
	MinBullets looseInt `json:"minBullets"`
	Style      string   `json:"style"`
	Detail     looseInt `json:"detail"`
	Model      string   `json:"model"`
}

// looseInt accepts a JSON number or a numeric string. Anything else reads as 0,
// which the request defaults then replace.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.Trim(string(b), `"`)), 64)
	if err != nil || math.IsNaN(f) {
		*n = 0
		return nil
	}
	*n = looseInt(min(max(f, math.MinInt32), math.MaxInt32))
	return nil
}

// bindMessage picks the 400 message for a body that failed to decode.
func bindMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "Missing question"
	case errors.As(err, &typeErr) && typeErr.Field == "question":
		return "Missing question"
	default:
		return "Invalid request body"
	}
}

// ChatHandler answers POST /api/chat with {"points": [...]}, holding at least
// max(10, minBullets) points. The upstream credential never leaves the server.
func ChatHandler(logger *logger.Logger, completer Completer, apiKey string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.WithContext(c.Request.Context()).WithComponent("chat")

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxChatBodyBytes)

		var body chatRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			log.Debug("invalid chat body", slog.String("error", err.Error()))
			m.ObserveChat(metrics.OutcomeBadRequest)
			apierrors.AbortWithBadRequest(c, bindMessage(err), nil)
			return
		}

		req, err := insights.NewRequest(body.Question, int(body.MinBullets), body.Style, int(body.Detail))
		if err != nil {
			m.ObserveChat(metrics.OutcomeBadRequest)
			apierrors.AbortWithBadRequest(c, "Missing question", nil)
			return
		}
		req.Model = body.Model

		if req.MinBullets > MaxMinBullets {
			log.Warn("minBullets capped",
				slog.Int("requested", req.MinBullets),
				slog.Int("served", MaxMinBullets))
			req.MinBullets = MaxMinBullets
		}

		if apiKey == "" {
			log.Error("chat request rejected: OPENAI_API_KEY is not set")
			m.ObserveChat(metrics.OutcomeMissingKey)
			apierrors.AbortWithInternal(c, "Server missing OPENAI_API_KEY", nil)
			return
		}

		start := time.Now()
		content, err := completer.Complete(c.Request.Context(), upstream.Call{
			APIKey: apiKey,
			Model:  req.Model,
			Prompt: insights.BuildPrompt(req),
		})
		m.ObserveUpstream(start)

		if err != nil {
			var statusErr *upstream.StatusError
			if errors.As(err, &statusErr) {
				log.Warn("upstream rejected chat completion",
					slog.Int("status", statusErr.StatusCode),
					slog.String("body", statusErr.Body))
				m.ObserveChat(metrics.OutcomeUpstreamError)
				apierrors.AbortWithUpstream(c, statusErr.StatusCode, "OpenAI error", statusErr.Body)
				return
			}

			logger.WithComponent("chat").LogError(c.Request.Context(), err, "chat completion failed")
			m.ObserveChat(metrics.OutcomeServerError)
			apierrors.AbortWithInternal(c, "Server error", nil)
			return
		}

		parsed := insights.Interpret(insights.RawText{Content: content}, req.MinBullets)
		points := insights.Finalize(parsed, req.MinBullets)
		m.ObservePadding(len(parsed), len(points))
		m.ObserveChat(metrics.OutcomeOK)

		log.Info("chat request served",
			slog.Int("min_bullets", req.MinBullets),
			slog.Int("points", len(points)),
			slog.Duration("upstream_duration", time.Since(start)))

		c.JSON(http.StatusOK, insights.Response{Points: points})
	}
}
