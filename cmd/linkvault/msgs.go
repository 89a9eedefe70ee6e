package linkvault

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Create links in bulk and remember them"
	MsgLinkShort       = "Link sources into a target directory"
	MsgListShort       = "List recorded batches"
	MsgShowShort       = "Show the links recorded by a batch"
	MsgRemoveShort     = "Remove batches and the links they created"
	MsgInvokeShort     = "Run one JSON request from stdin"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Error messages
	MsgErrInitPaths   = "failed to initialize paths: %w"
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrOpenStore   = "failed to open record store: %w"
	MsgErrNoCommand   = "no command specified"
	MsgErrUnknownShow = "unexpected result type %T"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat       = "Output format: auto, term, text or json"
	MsgFlagMode         = "Link mode, by name or number (see linkvault link --help)"
	MsgFlagName         = "Label for the batch (a random name when empty)"
	MsgFlagAs           = "Link name to use instead of the source's base name (single-source modes)"
	MsgFlagAll          = "Show the whole batch record, not only its entries"
	MsgFlagConfigFormat = "Config output format: yaml or toml"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/link-long.txt
	msgLinkLongRaw string
	MsgLinkLong    = strings.TrimSpace(msgLinkLongRaw)

	//go:embed msgs/link-example.txt
	msgLinkExampleRaw string
	MsgLinkExample    = strings.TrimRight(msgLinkExampleRaw, "\n")

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)

	//go:embed msgs/invoke-long.txt
	msgInvokeLongRaw string
	MsgInvokeLong    = strings.TrimSpace(msgInvokeLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
