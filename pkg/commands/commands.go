// Package commands provides the operations linkvault exposes to its front
// ends (the CLI and the JSON request interface).
//
// Each command is implemented in its own subdirectory:
//   - link/   - Link command
//   - read/   - ReadBatches and ReadBatchFiles commands
//   - remove/ - RemoveBatches command
//
// This file re-exports the command functions and provides App, which binds
// them to one filesystem, record store and configuration.
package commands

import (
	"github.com/arthur-debert/linkvault/pkg/commands/link"
	"github.com/arthur-debert/linkvault/pkg/commands/read"
	"github.com/arthur-debert/linkvault/pkg/commands/remove"
	"github.com/arthur-debert/linkvault/pkg/config"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/records"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// Link creates links and records them as a batch.
type LinkOptions = link.LinkOptions
type LinkResult = link.LinkResult

func Link(opts LinkOptions) (*LinkResult, error) {
	return link.Link(opts)
}

// ReadBatches lists every batch without its entries.
type ReadBatchesOptions = read.ReadBatchesOptions

func ReadBatches(opts ReadBatchesOptions) ([]types.BatchRecord, error) {
	return read.ReadBatches(opts)
}

// ReadBatchFiles loads one batch's entries, or the whole record.
type ReadBatchFilesOptions = read.ReadBatchFilesOptions

func ReadBatchFiles(opts ReadBatchFilesOptions) (interface{}, error) {
	return read.ReadBatchFiles(opts)
}

// RemoveBatches reverses the links of batches and forgets them.
type RemoveBatchesOptions = remove.RemoveBatchesOptions
type RemoveResult = remove.RemoveResult

func RemoveBatches(opts RemoveBatchesOptions) (*RemoveResult, error) {
	return remove.RemoveBatches(opts)
}

// App binds the commands to their dependencies
type App struct {
	FS      types.FS
	Records *records.Store
	Config  *config.Config
}

// NewApp creates an App
func NewApp(fsys types.FS, rs *records.Store, cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{FS: fsys, Records: rs, Config: cfg}
}

// LinkRequest is the input of App.Link
type LinkRequest struct {
	Sources  []string
	Target   string
	Mode     linker.Mode
	Name     string
	Override string
}

func (a *App) Link(req LinkRequest) (*LinkResult, error) {
	return Link(LinkOptions{
		FS:       a.FS,
		Records:  a.Records,
		Config:   a.Config,
		Sources:  req.Sources,
		Target:   req.Target,
		Mode:     req.Mode,
		Name:     req.Name,
		Override: req.Override,
	})
}

func (a *App) ReadBatches() ([]types.BatchRecord, error) {
	return ReadBatches(ReadBatchesOptions{Records: a.Records})
}

func (a *App) ReadBatchFiles(id string, all bool) (interface{}, error) {
	return ReadBatchFiles(ReadBatchFilesOptions{Records: a.Records, ID: id, All: all})
}

func (a *App) RemoveBatches(batches []types.BatchRecord) (*RemoveResult, error) {
	return RemoveBatches(RemoveBatchesOptions{
		FS:      a.FS,
		Records: a.Records,
		Workers: a.Config.WorkerCount(),
		Batches: batches,
	})
}
