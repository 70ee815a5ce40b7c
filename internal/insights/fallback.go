package insights

import (
	"regexp"
	"strings"
)

var (
	lineSplitter = regexp.MustCompile(`\r?\n`)
	bulletLine   = regexp.MustCompile(`^\s*(?:[-*]|\d+\.)\s+(.*)$`)
)

// ParseFallback extracts points from bullet-like text ("- ", "* " or "1. " markers).
// Text before the first colon becomes the title and the rest the explanation.
// Text without any bullet line yields a single "Summary" point carrying the text verbatim.
func ParseFallback(text string, minBullets int) []Point {
	var bullets []string
	for _, line := range lineSplitter.Split(text, -1) {
		if line == "" {
			continue
		}
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			bullets = append(bullets, strings.TrimSpace(m[1]))
		}
	}

	if len(bullets) == 0 {
		return []Point{{Title: "Summary", Explanation: text}}
	}

	// The result is capped at max(minBullets, len(bullets)), so every bullet survives.
	points := make([]Point, 0, max(minBullets, len(bullets)))
	for i, b := range bullets {
		title, explanation, _ := strings.Cut(b, ":")
		title = strings.TrimSpace(title)
		if title == "" {
			title = placeholderTitle(i)
		}
		points = append(points, Point{
			Title:       title,
			Explanation: strings.TrimSpace(explanation),
		})
	}

	return points
}
