// Package ipc serves linkvault's commands over a JSON request/response
// protocol, the surface a desktop front end talks to.
//
// A request names a command and carries its arguments:
//
//	{"cmd": "read_batch_files", "args": {"id": "aB3dE9", "all": true}}
//
// and every response has the same shape:
//
//	{"ok": true, "value": ...}
//	{"ok": false, "error": "[RECORD_NOT_FOUND] no batch \"aB3dE9\""}
//
// Errors cross the boundary as plain messages only. The command names of
// the first front end (read_sled_from_db and friends) are kept as aliases.
package ipc

import (
	"io"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/arthur-debert/linkvault/pkg/commands"
	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/logging"
	"github.com/arthur-debert/linkvault/pkg/registry"
	"github.com/arthur-debert/linkvault/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Command names
const (
	CmdLink           = "link"
	CmdReadBatches    = "read_batches"
	CmdReadBatchFiles = "read_batch_files"
	CmdRemoveBatches  = "remove_batches"
)

// Aliases maps legacy command names to current ones
var Aliases = map[string]string{
	"read_sled_from_db":       CmdReadBatches,
	"read_sled_files_from_db": CmdReadBatchFiles,
	"remove_sled_from_db":     CmdRemoveBatches,
}

// Service is what the dispatcher calls; commands.App implements it
type Service interface {
	Link(req commands.LinkRequest) (*commands.LinkResult, error)
	ReadBatches() ([]types.BatchRecord, error)
	ReadBatchFiles(id string, all bool) (interface{}, error)
	RemoveBatches(batches []types.BatchRecord) (*commands.RemoveResult, error)
}

// Request is one command invocation
type Request struct {
	Cmd  string              `json:"cmd"`
	Args jsoniter.RawMessage `json:"args,omitempty"`
}

// Response is the reply to a Request
type Response struct {
	OK    bool        `json:"ok"`
	Value interface{} `json:"value"`
	Error string      `json:"error,omitempty"`
}

// LinkArgs are the arguments of the link command. Name is the link name
// override, Lname the batch label.
type LinkArgs struct {
	Source []string `json:"source"`
	Target string   `json:"target"`
	T      int      `json:"t"`
	Lname  string   `json:"lname"`
	Name   *string  `json:"name"`
}

// ReadBatchFilesArgs are the arguments of the read_batch_files command
type ReadBatchFilesArgs struct {
	ID  string `json:"id"`
	All bool   `json:"all"`
}

// RemoveBatchesArgs are the arguments of the remove_batches command
type RemoveBatchesArgs struct {
	Fss []types.BatchRecord `json:"fss"`
}

type handler func(svc Service, args jsoniter.RawMessage) (interface{}, error)

// Dispatcher routes requests to a Service
type Dispatcher struct {
	svc      Service
	handlers registry.Registry[handler]
}

// NewDispatcher creates a dispatcher serving svc
func NewDispatcher(svc Service) *Dispatcher {
	d := &Dispatcher{
		svc:      svc,
		handlers: registry.NewNamed[handler]("command"),
	}
	registry.MustRegister[handler](d.handlers, CmdLink, handleLink)
	registry.MustRegister[handler](d.handlers, CmdReadBatches, handleReadBatches)
	registry.MustRegister[handler](d.handlers, CmdReadBatchFiles, handleReadBatchFiles)
	registry.MustRegister[handler](d.handlers, CmdRemoveBatches, handleRemoveBatches)
	return d
}

// Commands lists the accepted command names, aliases included
func (d *Dispatcher) Commands() []string {
	names := d.handlers.List()
	for alias := range Aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs one request. It never fails: errors become responses.
func (d *Dispatcher) Dispatch(req Request) Response {
	logger := logging.GetLogger("ipc")

	name := req.Cmd
	if canonical, ok := Aliases[name]; ok {
		name = canonical
	}
	h, err := d.handlers.Get(name)
	if err != nil {
		logger.Warn().Str("cmd", req.Cmd).Msg("Unknown command")
		return failure(errors.Newf(errors.ErrInvalidInput, "unknown command %q", req.Cmd))
	}

	logger.Debug().Str("cmd", name).Msg("Dispatching")
	value, err := h(d.svc, req.Args)
	if err != nil {
		logger.Warn().Err(err).Str("cmd", name).Msg("Command failed")
		return failure(err)
	}
	return Response{OK: true, Value: value}
}

// Serve reads a single request from r and writes its response to w
func (d *Dispatcher) Serve(r io.Reader, w io.Writer) error {
	var req Request
	resp := Response{}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		resp = failure(errors.Wrap(err, errors.ErrInvalidInput, "malformed request"))
	} else {
		resp = d.Dispatch(req)
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(resp); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot write response")
	}
	return nil
}

func failure(err error) Response {
	return Response{OK: false, Error: errors.Message(err)}
}

func decodeArgs(raw jsoniter.RawMessage, into interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "malformed arguments")
	}
	return nil
}

func handleLink(svc Service, raw jsoniter.RawMessage) (interface{}, error) {
	var args LinkArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	req := commands.LinkRequest{
		Sources: args.Source,
		Target:  args.Target,
		Mode:    linker.ModeFromInt(args.T),
		Name:    args.Lname,
	}
	if args.Name != nil {
		req.Override = *args.Name
	}
	result, err := svc.Link(req)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func handleReadBatches(svc Service, _ jsoniter.RawMessage) (interface{}, error) {
	batches, err := svc.ReadBatches()
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func handleReadBatchFiles(svc Service, raw jsoniter.RawMessage) (interface{}, error) {
	var args ReadBatchFilesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return svc.ReadBatchFiles(args.ID, args.All)
}

func handleRemoveBatches(svc Service, raw jsoniter.RawMessage) (interface{}, error) {
	var args RemoveBatchesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	result, err := svc.RemoveBatches(args.Fss)
	if err != nil {
		return nil, err
	}
	return result, nil
}
