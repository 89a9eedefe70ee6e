package linker

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/linkvault/pkg/config"
	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/ids"
	"github.com/arthur-debert/linkvault/pkg/logging"
	"github.com/arthur-debert/linkvault/pkg/records"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// Request describes one link run
type Request struct {
	Sources []string
	Target  string
	Mode    Mode
	// Name labels the batch; empty gets a generated name
	Name string
	// Override replaces the link name in the single-source modes
	Override string
}

// Failure is a link that could not be created
type Failure struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"type_"`
	Error  string `json:"error"`
}

// Outcome is the result of a run: the persisted batch holding every created
// link, and the links that failed.
type Outcome struct {
	Batch    types.BatchRecord
	Failures []Failure
}

// Persister stores a finished batch
type Persister interface {
	Persist(record *types.BatchRecord) error
}

// Options tunes the engine
type Options struct {
	IncludeSymlinks bool
	// Workers bounds concurrent link creation; 0 means runtime.NumCPU()
	Workers       int
	BatchIDLength int
	EntryDigits   int
	// Now is the clock used to stamp batches; nil means time.Now
	Now func() time.Time
}

// OptionsFromConfig derives engine options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		IncludeSymlinks: cfg.Link.IncludeSymlinks,
		Workers:         cfg.WorkerCount(),
		BatchIDLength:   cfg.IDs.BatchLength,
		EntryDigits:     cfg.IDs.EntryDigits,
	}
}

// Engine creates links and persists the batch describing them
type Engine struct {
	fs        types.FS
	persister Persister
	opts      Options
	logger    zerolog.Logger
}

// New creates an engine working on fsys and saving batches through persister
func New(fsys types.FS, persister Persister, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BatchIDLength <= 0 {
		opts.BatchIDLength = 6
	}
	if opts.EntryDigits <= 0 {
		opts.EntryDigits = 8
	}
	return &Engine{
		fs:        fsys,
		persister: persister,
		opts:      opts,
		logger:    logging.GetLogger("linker"),
	}
}

func (e *Engine) validate(req Request) error {
	if len(req.Sources) == 0 {
		return errors.New(errors.ErrNoSourceSelected, "no source selected")
	}
	for _, source := range req.Sources {
		if baseName(source) == "" {
			return errors.Newf(errors.ErrInvalidPath, "source %q has no file name", source).
				WithDetail("source", source)
		}
	}
	if strings.TrimSpace(req.Target) == "" {
		return errors.New(errors.ErrInvalidPath, "no target directory given")
	}
	return nil
}

// absolute resolves sources and target against the working directory so
// every link points at an absolute path. Blank paths are left for validate.
func absolute(req Request) (Request, error) {
	resolve := func(p, role string) (string, error) {
		if strings.TrimSpace(p) == "" {
			return p, nil
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrInvalidPath, "cannot resolve %s %s", role, p).
				WithDetail(role, p)
		}
		return abs, nil
	}

	sources := make([]string, len(req.Sources))
	for i, source := range req.Sources {
		abs, err := resolve(source, "source")
		if err != nil {
			return req, err
		}
		sources[i] = abs
	}
	target, err := resolve(req.Target, "target")
	if err != nil {
		return req, err
	}

	req.Sources = sources
	req.Target = target
	return req, nil
}

// Link runs req. Structural errors are returned before anything is created.
// Once links exist, the outcome is returned even if persisting the batch
// fails, together with that error.
func (e *Engine) Link(req Request) (*Outcome, error) {
	logger := e.logger.With().
		Str("mode", req.Mode.String()).
		Int("sources", len(req.Sources)).
		Str("target", req.Target).
		Logger()
	done := logging.LogOperationStart(logger, "link")
	defer done()

	req, err := absolute(req)
	if err != nil {
		return nil, err
	}
	if err := e.validate(req); err != nil {
		return nil, err
	}
	req.Mode = ModeFromInt(int(req.Mode))
	strategy := req.Mode.Strategy()
	ctx := planContext{fs: e.fs, includeSymlinks: e.opts.IncludeSymlinks, target: req.Target, logger: logger}

	if err := strategy.Validate(ctx, req); err != nil {
		return nil, err
	}
	if err := e.ensureTarget(req.Target); err != nil {
		return nil, err
	}

	var planned []Link
	if err := strategy.Plan(ctx, req, func(l Link) { planned = append(planned, l) }); err != nil {
		return nil, err
	}
	logger.Debug().Int("planned", len(planned)).Msg("Planned links")

	var successes sink[types.LinkEntry]
	var failures sink[Failure]
	e.execute(planned, strategy.Concurrent(), &successes, &failures)

	assembler := records.Assembler{Now: e.opts.Now, BatchIDLength: e.opts.BatchIDLength}
	outcome := &Outcome{
		Batch:    assembler.Assemble(req.Mode.String(), req.Name, filepath.Dir(req.Sources[0]), req.Target, successes.drain()),
		Failures: failures.drain(),
	}
	if outcome.Failures == nil {
		outcome.Failures = []Failure{}
	}

	if err := e.persister.Persist(&outcome.Batch); err != nil {
		logger.Error().Err(err).Str("batch", outcome.Batch.ID).Msg("Links created but batch not saved")
		return outcome, err
	}

	logger.Info().
		Str("batch", outcome.Batch.ID).
		Int("linked", len(outcome.Batch.Files)).
		Int("failed", len(outcome.Failures)).
		Msg("Link run finished")
	return outcome, nil
}

func (e *Engine) ensureTarget(target string) error {
	info, err := e.fs.Stat(target)
	if err == nil {
		if !info.IsDir() {
			return errors.Newf(errors.ErrInvalidPath, "target %s is not a directory", target).
				WithDetail("target", target)
		}
		return nil
	}
	if err := e.fs.MkdirAll(target, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidPath, "cannot create target directory %s", target).
			WithDetail("target", target)
	}
	return nil
}

func (e *Engine) execute(links []Link, concurrent bool, successes *sink[types.LinkEntry], failures *sink[Failure]) {
	if !concurrent {
		for _, l := range links {
			e.create(l, successes, failures)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for _, l := range links {
		g.Go(func() error {
			e.create(l, successes, failures)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) create(l Link, successes *sink[types.LinkEntry], failures *sink[Failure]) {
	var err error
	switch l.Kind {
	case types.KindHard:
		err = e.fs.Link(l.Source, l.Target)
	default:
		err = e.fs.Symlink(l.Source, l.Target)
	}

	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("source", l.Source).
			Str("target", l.Target).
			Str("kind", l.Kind.String()).
			Msg("Cannot create link")
		failures.add(Failure{
			Source: l.Source,
			Target: l.Target,
			Kind:   l.Kind.String(),
			Error:  errors.Wrap(err, errors.ErrLinkCreate, "cannot create link").Error(),
		})
		return
	}
	successes.add(types.NewLinkEntry(ids.NewNumericID(e.opts.EntryDigits), l.Kind, l.Source, l.Target))
}
