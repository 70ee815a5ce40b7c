package main

import (
	"fmt"
	"io"
	"os"

	"github.com/eternisai/fxinsight/internal/insights"
	"github.com/eternisai/fxinsight/internal/presentation"
	"github.com/spf13/cobra"
)

// Output formats
const (
	formatMarkdown = "markdown"
	formatPlain    = "plain"
	formatCopy     = "copy"
	formatSpeech   = "speech"
	formatJSON     = "json"
)

type outputOptions struct {
	format string
	theme  string
	width  int
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", formatMarkdown, "Output format (markdown, plain, copy, speech, json)")
	cmd.Flags().StringVar(&o.theme, "theme", "auto", "Glamour style for markdown output (auto, dark, light, notty)")
	cmd.Flags().IntVar(&o.width, "width", 100, "Word wrap width for markdown output")
}

func writePoints(w io.Writer, points []insights.Point, opts outputOptions) error {
	var out string

	switch opts.format {
	case formatMarkdown:
		rendered, err := presentation.Render(points, opts.theme, opts.width)
		if err != nil {
			return err
		}
		out = rendered
	case formatPlain:
		out = presentation.Markdown(points)
	case formatCopy:
		out = presentation.CopyText(points) + "\n"
	case formatSpeech:
		out = presentation.SpeechText(points) + "\n"
	case formatJSON:
		out = presentation.Encode(points) + "\n"
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	_, err := io.WriteString(w, out)
	return err
}

func exportPoints(path string, points []insights.Point) (presentation.Status, error) {
	if len(points) == 0 {
		return presentation.NothingTo("download"), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return presentation.Status{}, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := presentation.Export(f, points); err != nil {
		return presentation.Status{}, err
	}

	return presentation.Exported(path), f.Close()
}

func printStatus(w io.Writer, s presentation.Status) {
	fmt.Fprintln(w, s.Styled())
}
