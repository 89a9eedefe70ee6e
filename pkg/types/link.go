package types

import (
	"os"

	"github.com/arthur-debert/linkvault/pkg/errors"
)

// LinkKind selects the OS primitive used for one link
type LinkKind int

const (
	// KindFile is a symbolic link to a file
	KindFile LinkKind = iota
	// KindDir is a symbolic link to a directory
	KindDir
	// KindHard is a hard link
	KindHard
)

// String returns the display label persisted with every entry
func (k LinkKind) String() string {
	switch k {
	case KindFile:
		return "File"
	case KindDir:
		return "Dir"
	case KindHard:
		return "Hard"
	default:
		return "Unknown"
	}
}

// LinkEntry is one created link. Kind holds the display label, not the enum
// value, because it is persisted as text.
type LinkEntry struct {
	ID     uint64 `json:"id"`
	Kind   string `json:"type_"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// NewLinkEntry builds an entry for a link of the given kind
func NewLinkEntry(id uint64, kind LinkKind, source, target string) LinkEntry {
	return LinkEntry{
		ID:     id,
		Kind:   kind.String(),
		Source: source,
		Target: target,
	}
}

// Reverse removes whatever exists at Target. Lstat is used so a symlink is
// removed rather than what it points at. A missing target is not an error.
func (e LinkEntry) Reverse(fsys FS) error {
	if _, err := fsys.Lstat(e.Target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrLinkReverse, "cannot inspect %s", e.Target).
			WithDetail("target", e.Target)
	}

	if err := fsys.Remove(e.Target); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrLinkReverse, "cannot remove %s", e.Target).
			WithDetail("target", e.Target)
	}
	return nil
}
