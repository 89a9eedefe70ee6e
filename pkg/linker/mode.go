package linker

import (
	"strconv"
	"strings"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/registry"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// Mode selects how sources are linked into the target root
type Mode int

const (
	ModeSingleFile Mode = iota
	ModeMultipleFiles
	ModeSingleDir
	ModeMultipleDirs
	ModeAllFiles
	ModeTopLevel
	ModeSingleHard
	ModeMultipleHard
	ModeAllFilesHard
)

type modeInfo struct {
	label    string
	slug     string
	strategy Strategy
}

var modeTable = [...]modeInfo{
	ModeSingleFile:    {"single file", "single-file", single{kind: types.KindFile}},
	ModeMultipleFiles: {"multiple files", "multiple-files", multiple{kind: types.KindFile}},
	ModeSingleDir:     {"single directory", "single-dir", single{kind: types.KindDir, needDir: true}},
	ModeMultipleDirs:  {"multiple directories", "multiple-dirs", multiple{kind: types.KindDir, needDir: true}},
	ModeAllFiles:      {"all files", "all-files", allFiles{kind: types.KindFile}},
	ModeTopLevel:      {"top level", "top-level", topLevel{}},
	ModeSingleHard:    {"single hard link", "single-hard", single{kind: types.KindHard}},
	ModeMultipleHard:  {"multiple hard links", "multiple-hard", multiple{kind: types.KindHard}},
	ModeAllFilesHard:  {"all files (hard)", "all-files-hard", allFiles{kind: types.KindHard}},
}

var modes = registry.NewNamed[Mode]("link mode")

func init() {
	for i, info := range modeTable {
		registry.MustRegister(modes, info.slug, Mode(i))
	}
}

// ModeFromInt maps a numeric mode, as sent by the front end, to a Mode.
// Values outside 0..8 select ModeSingleFile.
func ModeFromInt(n int) Mode {
	if n < 0 || n >= len(modeTable) {
		return ModeSingleFile
	}
	return Mode(n)
}

// ParseMode accepts a slug such as "top-level" or a number
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return ModeFromInt(n), nil
	}
	m, err := modes.Get(strings.ToLower(s))
	if err != nil {
		return ModeSingleFile, errors.Wrapf(err, errors.ErrInvalidInput, "unknown link mode %q", s)
	}
	return m, nil
}

// Modes returns every mode in numeric order
func Modes() []Mode {
	all := make([]Mode, len(modeTable))
	for i := range modeTable {
		all[i] = Mode(i)
	}
	return all
}

// Slugs returns the registered mode names in sorted order
func Slugs() []string {
	return modes.List()
}

func (m Mode) info() modeInfo {
	return modeTable[ModeFromInt(int(m))]
}

// String returns the display label persisted as the batch's link type
func (m Mode) String() string {
	return m.info().label
}

// Slug returns the command-line name of the mode
func (m Mode) Slug() string {
	return m.info().slug
}

// Strategy returns the strategy implementing the mode
func (m Mode) Strategy() Strategy {
	return m.info().strategy
}
