// Package ui renders linkvault results for people and scripts. Terminal
// output uses pterm tables and lipgloss styles; plain text keeps the same
// layout without escape codes; JSON mirrors the IPC value shapes.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// Batches lists batch metadata
	Batches(batches []types.BatchRecord) error
	// Batch shows one batch with its entries
	Batch(batch types.BatchRecord) error
	// Entries lists link entries
	Entries(entries []types.LinkEntry) error
	// Linked reports the outcome of a link operation
	Linked(batch types.BatchRecord, failed []linker.Failure) error
	// Removed reports which batches were dropped and which were kept
	Removed(removed, kept []string) error
	// Message renders a simple message
	Message(msg string) error
	// Error renders an error
	Error(err error) error
}

// Options tweaks NewRenderer
type Options struct {
	// Now anchors relative times; time.Now when nil
	Now func() time.Time
}

// NewRenderer creates a renderer for format writing to w
func NewRenderer(format Format, w io.Writer, opts ...Options) (Renderer, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	switch format {
	case FormatAuto:
		return NewRenderer(DetectFormat(w), w, o)
	case FormatTerminal:
		return newTableRenderer(w, true, o.Now), nil
	case FormatText:
		return newTableRenderer(w, false, o.Now), nil
	case FormatJSON:
		return newJSONRenderer(w), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}

// RelativeTime renders a batch timestamp as "3 minutes ago". Timestamps
// that do not parse are returned unchanged.
func RelativeTime(stamp string, now time.Time) string {
	t, err := time.ParseInLocation(types.TimeLayout, stamp, time.Local)
	if err != nil {
		return stamp
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
