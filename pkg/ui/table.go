package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// tableRenderer serves both FormatTerminal and FormatText; styled selects
// colors.
type tableRenderer struct {
	w      io.Writer
	styled bool
	styles *Styles
	now    func() time.Time
}

func newTableRenderer(w io.Writer, styled bool, now func() time.Time) *tableRenderer {
	return &tableRenderer{w: w, styled: styled, styles: NewStyles(w), now: now}
}

func (r *tableRenderer) style(name, text string) string {
	if !r.styled {
		return text
	}
	return r.styles.Render(name, text)
}

func (r *tableRenderer) table(data pterm.TableData) error {
	printer := pterm.DefaultTable.WithHasHeader().WithData(data)
	if !r.styled {
		plain := pterm.NewStyle()
		printer = printer.WithStyle(plain).WithHeaderStyle(plain).WithSeparatorStyle(plain)
	}
	out, err := printer.Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render table")
	}
	_, err = fmt.Fprintln(r.w, out)
	return err
}

func (r *tableRenderer) Batches(batches []types.BatchRecord) error {
	if len(batches) == 0 {
		return r.Message(r.style(StyleMuted, "No batches recorded."))
	}

	data := pterm.TableData{{"ID", "NAME", "TYPE", "TARGET", "CREATED"}}
	for _, b := range batches {
		data = append(data, []string{
			b.ID,
			b.Name,
			b.LinkType,
			r.style(StylePath, b.Target),
			RelativeTime(b.Time, r.now()),
		})
	}
	if err := r.table(data); err != nil {
		return err
	}
	return r.Message(r.style(StyleMuted, plural(len(batches), "batch")))
}

func (r *tableRenderer) Batch(b types.BatchRecord) error {
	header := fmt.Sprintf("%s  %s", r.style(StyleHeading, b.ID), b.Name)
	if _, err := fmt.Fprintln(r.w, header); err != nil {
		return err
	}
	fields := [][2]string{
		{"type", b.LinkType},
		{"source", b.Source},
		{"target", b.Target},
		{"created", fmt.Sprintf("%s (%s)", b.Time, RelativeTime(b.Time, r.now()))},
		{"entries", b.FilesID},
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(r.w, "  %-8s %s\n", r.style(StyleMuted, f[0]), f[1]); err != nil {
			return err
		}
	}
	return r.Entries(b.Files)
}

func (r *tableRenderer) Entries(entries []types.LinkEntry) error {
	if len(entries) == 0 {
		return r.Message(r.style(StyleMuted, "No entries."))
	}

	data := pterm.TableData{{"ID", "TYPE", "SOURCE", "TARGET"}}
	for _, e := range entries {
		data = append(data, []string{
			strconv.FormatUint(e.ID, 10),
			r.style(StyleKind, e.Kind),
			e.Source,
			r.style(StylePath, e.Target),
		})
	}
	return r.table(data)
}

func (r *tableRenderer) Linked(b types.BatchRecord, failed []linker.Failure) error {
	msg := fmt.Sprintf("Linked %s into %s as batch %s (%s)",
		plural(len(b.Files), "entry"), b.Target, b.ID, b.Name)
	if err := r.Message(r.style(StyleSuccess, msg)); err != nil {
		return err
	}
	if len(failed) == 0 {
		return nil
	}

	if err := r.Message(r.style(StyleWarning, fmt.Sprintf("%s failed:", plural(len(failed), "link")))); err != nil {
		return err
	}
	data := pterm.TableData{{"SOURCE", "TARGET", "ERROR"}}
	for _, f := range failed {
		data = append(data, []string{f.Source, f.Target, r.style(StyleError, f.Error)})
	}
	return r.table(data)
}

func (r *tableRenderer) Removed(removed, kept []string) error {
	for _, id := range removed {
		if err := r.Message(r.style(StyleSuccess, "Removed batch "+id)); err != nil {
			return err
		}
	}
	for _, id := range kept {
		if err := r.Message(r.style(StyleWarning, "Kept batch "+id+" (some links could not be reversed)")); err != nil {
			return err
		}
	}
	return nil
}

func (r *tableRenderer) Message(msg string) error {
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

func (r *tableRenderer) Error(err error) error {
	return r.Message(r.style(StyleError, "Error: ") + errors.Message(err))
}
