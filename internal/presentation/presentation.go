// Package presentation turns generated points into the text views a caller
// shows, copies, speaks or downloads.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/eternisai/fxinsight/internal/insights"
)

// ExportFilename is the fixed name of the download artifact.
const ExportFilename = "ai_insights.json"

func title(p insights.Point, i int) string {
	if p.Title == "" {
		return fmt.Sprintf("Point %d", i+1)
	}
	return p.Title
}

// Markdown renders points as an ordered Markdown list. Explanations go on an
// indented line under the title and are left out when empty.
func Markdown(points []insights.Point) string {
	var b strings.Builder
	for i, p := range points {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, title(p, i))
		if p.Explanation != "" {
			fmt.Fprintf(&b, "   %s\n", p.Explanation)
		}
	}
	return b.String()
}

// Render renders points for a terminal using the named glamour style
// ("auto", "dark", "light", "notty", ...).
func Render(points []insights.Point, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(Markdown(points))
	if err != nil {
		return "", fmt.Errorf("render points: %w", err)
	}

	return out, nil
}

// CopyText is the clipboard view: a nested bullet list.
func CopyText(points []insights.Point) string {
	lines := make([]string, 0, len(points))
	for i, p := range points {
		lines = append(lines, fmt.Sprintf("- %s\n  - %s", title(p, i), p.Explanation))
	}
	return strings.Join(lines, "\n")
}

// SpeechText is the read-aloud view: numbered title and explanation blocks.
func SpeechText(points []insights.Point) string {
	blocks := make([]string, 0, len(points))
	for i, p := range points {
		blocks = append(blocks, fmt.Sprintf("%d. %s\n%s", i+1, p.Title, p.Explanation))
	}
	return strings.Join(blocks, "\n\n")
}

// Encode serializes points into the text attached to a rendered result.
func Encode(points []insights.Point) string {
	if points == nil {
		points = []insights.Point{}
	}
	b, err := json.Marshal(points)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Decode reads points back from Encode output. Anything undecodable yields an empty list.
func Decode(s string) []insights.Point {
	if strings.TrimSpace(s) == "" {
		return []insights.Point{}
	}
	var points []insights.Point
	if err := json.Unmarshal([]byte(s), &points); err != nil || points == nil {
		return []insights.Point{}
	}
	return points
}

// Export writes the download artifact: {"points": [...]} indented by two spaces.
func Export(w io.Writer, points []insights.Point) error {
	if points == nil {
		points = []insights.Point{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(insights.Response{Points: points}); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	return nil
}
