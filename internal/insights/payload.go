package insights

import (
	"bytes"
	"encoding/json"
)

// Payload is what a generation source hands back: either already structured
// points or raw model text that still needs decoding.
type Payload interface {
	isPayload()
}

// Structured carries points that arrived in the {"points": [...]} shape.
type Structured struct {
	Points []Point
}

// RawText carries unparsed model output.
type RawText struct {
	Content string
}

func (Structured) isPayload() {}
func (RawText) isPayload()    {}

// DecodePayload resolves a response body into a Payload. A JSON object holding a
// "points" array is Structured; anything else is RawText.
func DecodePayload(body []byte) Payload {
	if points, ok := decodePoints(body); ok {
		return Structured{Points: points}
	}
	return RawText{Content: string(body)}
}

// Interpret turns a payload into points without padding.
// Raw text that is not valid JSON goes through ParseFallback.
func Interpret(p Payload, minBullets int) []Point {
	switch v := p.(type) {
	case Structured:
		return v.Points
	case RawText:
		var resp Response
		if err := json.Unmarshal([]byte(v.Content), &resp); err != nil {
			return ParseFallback(v.Content, minBullets)
		}
		return resp.Points
	default:
		return nil
	}
}

// decodePoints reports whether body is an object with a "points" array.
func decodePoints(body []byte) ([]Point, bool) {
	var raw struct {
		Points json.RawMessage `json:"points"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}

	trimmed := bytes.TrimSpace(raw.Points)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var points []Point
	if err := json.Unmarshal(trimmed, &points); err != nil {
		return nil, false
	}
	if points == nil {
		points = []Point{}
	}

	return points, true
}
