package insights

import "fmt"

const (
	// DefaultMinBullets is the floor applied to every requested point count.
	DefaultMinBullets = 10

	fillerTitleFormat = "Additional consideration %d"
	fillerExplanation = "Add more detail specific to the user context."
)

// Point is a single insight: a short title and its explanation.
type Point struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// Response is the structured shape returned by the proxy and requested from the upstream model.
type Response struct {
	Points []Point `json:"points"`
}

// EnsureMinimum pads points with synthesized entries until it holds at least n points.
// The input slice is never modified or truncated.
func EnsureMinimum(points []Point, n int) []Point {
	if len(points) >= n {
		return points
	}

	out := make([]Point, len(points), n)
	copy(out, points)
	for len(out) < n {
		out = append(out, Point{
			Title:       fmt.Sprintf(fillerTitleFormat, len(out)+1),
			Explanation: fillerExplanation,
		})
	}

	return out
}

// Finalize is the end-of-pipeline normalization: empty titles get a positional
// placeholder and the list is padded to n.
func Finalize(points []Point, n int) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		if p.Title == "" {
			p.Title = placeholderTitle(i)
		}
		out[i] = p
	}

	return EnsureMinimum(out, n)
}

func placeholderTitle(i int) string {
	return fmt.Sprintf("Point %d", i+1)
}
