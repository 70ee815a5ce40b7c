package presentation

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Status is a user-facing status line. Errors stay on screen; everything else
// may be dismissed after a short delay.
type Status struct {
	Message     string
	Err         bool
	AutoDismiss bool
}

func info(msg string) Status {
	return Status{Message: msg, AutoDismiss: true}
}

func failure(msg string) Status {
	return Status{Message: msg, Err: true}
}

// Generated reports a successful generation.
func Generated(n int) Status { return info(fmt.Sprintf("Generated %d bullet points.", n)) }

// Stopped reports a cancelled generation.
func Stopped() Status { return info("Generation stopped.") }

// DemoLoaded reports that demo content is shown.
func DemoLoaded() Status { return info("Demo loaded.") }

// Exported reports a written download artifact.
func Exported(path string) Status { return info(fmt.Sprintf("Saved %s.", path)) }

// Failed reports a hard generation failure.
func Failed() Status { return failure("Failed to generate insights.") }

// EmptyQuestion asks for a question. Recoverable, so it is dismissed like an info line.
func EmptyQuestion() Status {
	return Status{Message: "Please enter a question.", Err: true, AutoDismiss: true}
}

// NothingTo reports an action without content, e.g. NothingTo("copy").
func NothingTo(action string) Status {
	return Status{Message: fmt.Sprintf("Nothing to %s.", action), Err: true, AutoDismiss: true}
}

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5A5A5A", Dark: "#A8A8A8"})
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D")).Bold(true)
)

// Styled returns the message colored for a terminal. Without a color-capable
// terminal it is the plain message.
func (s Status) Styled() string {
	if s.Err {
		return errorStyle.Render(s.Message)
	}
	return infoStyle.Render(s.Message)
}
