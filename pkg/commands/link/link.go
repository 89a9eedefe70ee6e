package link

import (
	"github.com/arthur-debert/linkvault/pkg/config"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/logging"
	"github.com/arthur-debert/linkvault/pkg/records"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// LinkOptions defines the options for the Link command.
type LinkOptions struct {
	FS      types.FS
	Records *records.Store
	Config  *config.Config

	// Sources are the paths to link; single-source modes use the first
	Sources []string
	// Target is the directory links are created in
	Target string
	Mode   linker.Mode
	// Name labels the batch
	Name string
	// Override renames the link in single-source modes
	Override string
}

// LinkResult is the persisted batch plus the links that could not be made
type LinkResult struct {
	Batch  types.BatchRecord `json:"batch"`
	Failed []linker.Failure  `json:"failed"`
}

// Link runs the link engine and persists the batch.
func Link(opts LinkOptions) (*LinkResult, error) {
	log := logging.GetLogger("commands.link")
	log.Debug().Str("command", "Link").Str("mode", opts.Mode.Slug()).Msg("Executing command")

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	engine := linker.New(opts.FS, opts.Records, linker.OptionsFromConfig(cfg))

	outcome, err := engine.Link(linker.Request{
		Sources:  opts.Sources,
		Target:   opts.Target,
		Mode:     opts.Mode,
		Name:     opts.Name,
		Override: opts.Override,
	})
	if outcome == nil {
		return nil, err
	}

	result := &LinkResult{
		Batch:  outcome.Batch,
		Failed: outcome.Failures,
	}
	log.Info().
		Str("command", "Link").
		Str("batch", result.Batch.ID).
		Int("linked", len(result.Batch.Files)).
		Int("failed", len(result.Failed)).
		Msg("Command finished")
	return result, err
}
