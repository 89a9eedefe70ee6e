package linker

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// Link is one link a strategy wants created
type Link struct {
	Source string
	Target string
	Kind   types.LinkKind
}

// planContext carries what a strategy may touch while planning
type planContext struct {
	fs              types.FS
	includeSymlinks bool
	// target is the absolute target root; walks never enter it
	target string
	logger zerolog.Logger
}

// Strategy is one link mode's traversal
type Strategy interface {
	// Validate rejects requests the mode cannot run. It is called before
	// anything is written.
	Validate(ctx planContext, req Request) error
	// Plan emits the links to create. Directory-walking modes create the
	// directory skeleton under the target root as they go.
	Plan(ctx planContext, req Request, emit func(Link)) error
	// Concurrent reports whether planned links are created through the pool
	Concurrent() bool
}

// baseName returns the last element of p, or "" when p has none (a root or
// an empty path).
func baseName(p string) string {
	trimmed := strings.TrimRight(p, `/\`)
	if trimmed == "" {
		return ""
	}
	base := filepath.Base(trimmed)
	if base == "." || base == ".." || base == string(filepath.Separator) || strings.HasSuffix(base, ":") {
		return ""
	}
	return base
}

// within reports whether path is root or lies below it
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// skipTarget reports, and logs, sources that are the target root or sit
// inside it. Linking those would feed the walk its own output.
func skipTarget(ctx planContext, source string) bool {
	if ctx.target == "" || !within(source, ctx.target) {
		return false
	}
	ctx.logger.Debug().Str("source", source).Msg("Skipping target inside source")
	return true
}

func requireDir(fsys types.FS, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidPath, "cannot read source %s", path).
			WithDetail("source", path)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidPath, "source %s is not a directory", path).
			WithDetail("source", path)
	}
	return nil
}

// single links the first source only, under the override name if given
type single struct {
	kind    types.LinkKind
	needDir bool
}

func (s single) Validate(ctx planContext, req Request) error {
	if s.needDir {
		return requireDir(ctx.fs, req.Sources[0])
	}
	return nil
}

func (s single) Plan(ctx planContext, req Request, emit func(Link)) error {
	source := req.Sources[0]
	name := strings.TrimSpace(req.Override)
	if name == "" {
		name = baseName(source)
	}
	emit(Link{Source: source, Target: filepath.Join(req.Target, name), Kind: s.kind})
	return nil
}

func (s single) Concurrent() bool { return false }

// multiple links every source under its own base name
type multiple struct {
	kind    types.LinkKind
	needDir bool
}

func (m multiple) Validate(ctx planContext, req Request) error {
	if !m.needDir {
		return nil
	}
	for _, source := range req.Sources {
		if err := requireDir(ctx.fs, source); err != nil {
			return err
		}
	}
	return nil
}

func (m multiple) Plan(ctx planContext, req Request, emit func(Link)) error {
	for _, source := range req.Sources {
		emit(Link{Source: source, Target: filepath.Join(req.Target, baseName(source)), Kind: m.kind})
	}
	return nil
}

func (m multiple) Concurrent() bool { return true }

// allFiles mirrors the first source's tree under the target root: every
// directory is recreated and every regular file is linked.
type allFiles struct {
	kind types.LinkKind
}

func (a allFiles) Validate(ctx planContext, req Request) error {
	return requireDir(ctx.fs, req.Sources[0])
}

func (a allFiles) Plan(ctx planContext, req Request, emit func(Link)) error {
	root := req.Sources[0]
	entries, err := ctx.fs.ReadDir(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidPath, "cannot read directory %s", root).
			WithDetail("source", root)
	}
	a.walk(ctx, root, req.Target, entries, emit)
	return nil
}

// Failures below the root are logged and the walk goes on.
func (a allFiles) walk(ctx planContext, dir, targetDir string, entries []fs.DirEntry, emit func(Link)) {
	for _, entry := range entries {
		source := filepath.Join(dir, entry.Name())
		target := filepath.Join(targetDir, entry.Name())
		if skipTarget(ctx, source) {
			continue
		}

		switch kind, ok := classify(ctx, source, entry); {
		case !ok:
			continue
		case kind == entryFile:
			emit(Link{Source: source, Target: target, Kind: a.kind})
		case kind == entryDir || kind == entrySymlinkDir:
			if err := ctx.fs.MkdirAll(target, 0755); err != nil {
				ctx.logger.Warn().Err(err).Str("target", target).Msg("Cannot create directory")
			}
			// symlinked directories are recreated, never descended
			if kind == entrySymlinkDir {
				continue
			}
			children, err := ctx.fs.ReadDir(source)
			if err != nil {
				ctx.logger.Warn().Err(err).Str("source", source).Msg("Cannot read directory")
				continue
			}
			a.walk(ctx, source, target, children, emit)
		}
	}
}

func (a allFiles) Concurrent() bool { return true }

// topLevel links each immediate child of the first source, as a Dir link
// for directories and a File link otherwise. The source itself is not linked.
type topLevel struct{}

func (topLevel) Validate(ctx planContext, req Request) error {
	return requireDir(ctx.fs, req.Sources[0])
}

func (topLevel) Plan(ctx planContext, req Request, emit func(Link)) error {
	root := req.Sources[0]
	entries, err := ctx.fs.ReadDir(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidPath, "cannot read directory %s", root).
			WithDetail("source", root)
	}
	for _, entry := range entries {
		source := filepath.Join(root, entry.Name())
		target := filepath.Join(req.Target, entry.Name())
		if skipTarget(ctx, source) {
			continue
		}

		kind, ok := classify(ctx, source, entry)
		if !ok {
			continue
		}
		if kind == entryDir || kind == entrySymlinkDir {
			emit(Link{Source: source, Target: target, Kind: types.KindDir})
		} else {
			emit(Link{Source: source, Target: target, Kind: types.KindFile})
		}
	}
	return nil
}

func (topLevel) Concurrent() bool { return true }

type entryKind int

const (
	entryFile entryKind = iota
	entryDir
	entrySymlinkDir
)

// classify sorts a directory entry. Symlinks count only when
// include_symlinks is set, by the type of what they resolve to; a symlink to
// a file then classifies as entryFile. Anything else (dangling links,
// sockets, devices) is skipped.
func classify(ctx planContext, path string, entry fs.DirEntry) (entryKind, bool) {
	mode := entry.Type()
	switch {
	case mode.IsDir():
		return entryDir, true
	case mode.IsRegular():
		return entryFile, true
	case mode&fs.ModeSymlink != 0:
		if !ctx.includeSymlinks {
			ctx.logger.Debug().Str("source", path).Msg("Skipping symlink")
			return 0, false
		}
		info, err := ctx.fs.Stat(path)
		if err != nil {
			ctx.logger.Debug().Err(err).Str("source", path).Msg("Skipping dangling symlink")
			return 0, false
		}
		if info.IsDir() {
			return entrySymlinkDir, true
		}
		if info.Mode().IsRegular() {
			return entryFile, true
		}
	}
	return 0, false
}
