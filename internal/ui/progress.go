package ui

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar is a progress bar on stderr. It satisfies the pipelines' progress
// interfaces.
type Bar struct {
	*progressbar.ProgressBar
}

// NewProgress creates a bar for total steps. When visible is false the bar
// draws nothing.
func NewProgress(total int, description string, visible bool) *Bar {
	return newProgress(os.Stderr, total, description, visible)
}

func newProgress(w io.Writer, total int, description string, visible bool) *Bar {
	return &Bar{progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(visible),
	)}
}
