package insights

import (
	"errors"
	"strings"
)

// Style controls the length and depth of the generated explanations.
type Style string

const (
	StyleConcise  Style = "concise"
	StyleBalanced Style = "balanced"
	StyleInDepth  Style = "in-depth"
)

const (
	minDetail     = 1
	maxDetail     = 3
	defaultDetail = 2
)

// ErrEmptyQuestion is returned when a request carries no question text.
var ErrEmptyQuestion = errors.New("question is empty")

// ParseStyle maps s to a known style, defaulting to StyleBalanced.
func ParseStyle(s string) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleConcise:
		return StyleConcise
	case StyleInDepth:
		return StyleInDepth
	default:
		return StyleBalanced
	}
}

// Request is a single generation request.
type Request struct {
	Question   string `json:"question"`
	MinBullets int    `json:"minBullets"`
	Style      Style  `json:"style"`
	Detail     int    `json:"detail"`
	// Model is forwarded to the proxy when set.
	Model string `json:"model,omitempty"`
}

// NewRequest builds a normalized request: the question is trimmed, minBullets is
// floored at DefaultMinBullets, style falls back to balanced and detail is kept in 1..3.
func NewRequest(question string, minBullets int, style string, detail int) (Request, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Request{}, ErrEmptyQuestion
	}

	return Request{
		Question:   question,
		MinBullets: ClampMinBullets(minBullets),
		Style:      ParseStyle(style),
		Detail:     clampDetail(detail),
	}, nil
}

// ClampMinBullets applies the DefaultMinBullets floor.
func ClampMinBullets(n int) int {
	return max(DefaultMinBullets, n)
}

func clampDetail(d int) int {
	if d == 0 {
		return defaultDetail
	}
	return min(max(d, minDetail), maxDetail)
}
