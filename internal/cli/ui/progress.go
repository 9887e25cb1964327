package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ProgressBar is a single-line progress bar. It is safe for concurrent use,
// so it can be fed directly from a build's progress callback.
type ProgressBar struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	current int
	width   int
	message string
	noColor bool
}

// ProgressBarOptions configures progress bar behavior
type ProgressBarOptions struct {
	Total   int
	Width   int // default 40
	Message string
	NoColor bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width <= 0 {
		width = 40
	}
	return &ProgressBar{
		writer:  w,
		total:   opts.Total,
		width:   width,
		message: opts.Message,
		noColor: opts.NoColor,
	}
}

// Update sets the progress and the trailing message.
func (p *ProgressBar) Update(current int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = min(current, p.total)
	p.message = message
	p.render()
}

// Finish completes the bar and prints message as a success line.
func (p *ProgressBar) Finish(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.total
	p.render()
	fmt.Fprint(p.writer, "\r\033[K")
	if message != "" {
		WriteSuccess(p.writer, message, p.noColor)
	}
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total)
	filled := int(float64(p.width) * percent)

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if p.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filled))
	gray.Fprint(&bar, strings.Repeat("░", p.width-filled))
	bar.WriteString("]")

	msg := ""
	if p.message != "" {
		msg = " " + p.message
	}
	fmt.Fprintf(p.writer, "\r\033[K%s %3d%% (%d/%d)%s", bar.String(), int(percent*100), p.current, p.total, msg)
}
