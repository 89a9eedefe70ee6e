package linkvault

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/linkvault/internal/version"
	"github.com/arthur-debert/linkvault/pkg/commands"
	"github.com/arthur-debert/linkvault/pkg/config"
	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/filesystem"
	"github.com/arthur-debert/linkvault/pkg/ipc"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/logging"
	"github.com/arthur-debert/linkvault/pkg/paths"
	"github.com/arthur-debert/linkvault/pkg/records"
	"github.com/arthur-debert/linkvault/pkg/store"
	"github.com/arthur-debert/linkvault/pkg/types"
	"github.com/arthur-debert/linkvault/pkg/ui"

	// record store backends selectable through store.backend
	_ "github.com/arthur-debert/linkvault/pkg/store/badgerdb"
	_ "github.com/arthur-debert/linkvault/pkg/store/sqlitedb"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity int
		format    string
	)

	rootCmd := &cobra.Command{
		Use:     "linkvault",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newInvokeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// loadConfig resolves the XDG paths and reads the configuration
func loadConfig() (*config.Config, error) {
	p, err := paths.New()
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	cfg, err := config.Load(p)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

// withApp opens the record store for the duration of fn
func withApp(fn func(app *commands.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := store.Shared(store.OptionsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf(MsgErrOpenStore, err)
	}
	defer func() {
		if cerr := store.CloseShared(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close record store")
		}
	}()

	app := commands.NewApp(filesystem.NewOS(), records.NewFromConfig(backend, cfg), cfg)
	return fn(app)
}

// renderer builds the output renderer selected by --format
func renderer(cmd *cobra.Command) (ui.Renderer, error) {
	name, _ := cmd.Root().PersistentFlags().GetString("format")
	format, err := ui.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

func newLinkCmd() *cobra.Command {
	var (
		mode string
		name string
		as   string
	)

	cmd := &cobra.Command{
		Use:     "link SOURCE... TARGET",
		Short:   MsgLinkShort,
		Long:    MsgLinkLong,
		Example: MsgLinkExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := linker.ParseMode(mode)
			if err != nil {
				return err
			}
			r, err := renderer(cmd)
			if err != nil {
				return err
			}

			sources, target := args[:len(args)-1], args[len(args)-1]
			log.Info().
				Strs("sources", sources).
				Str("target", target).
				Str("mode", m.Slug()).
				Msg("Linking")

			return withApp(func(app *commands.App) error {
				result, err := app.Link(commands.LinkRequest{
					Sources:  sources,
					Target:   target,
					Mode:     m,
					Name:     name,
					Override: as,
				})
				if result != nil {
					if rerr := r.Linked(result.Batch, result.Failed); rerr != nil {
						return rerr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "t", linker.ModeSingleFile.Slug(), MsgFlagMode)
	cmd.Flags().StringVar(&name, "name", "", MsgFlagName)
	cmd.Flags().StringVar(&as, "as", "", MsgFlagAs)
	_ = cmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return linker.Slugs(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return withApp(func(app *commands.App) error {
				batches, err := app.ReadBatches()
				if err != nil {
					return err
				}
				return r.Batches(batches)
			})
		},
	}
}

// batchIDsCompletion completes recorded batch ids
func batchIDsCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var ids []string
	err := withApp(func(app *commands.App) error {
		batches, err := app.ReadBatches()
		if err != nil {
			return err
		}
		for _, b := range batches {
			ids = append(ids, b.ID+"\t"+b.Name)
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func newShowCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:               "show ID",
		Short:             MsgShowShort,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: batchIDsCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return withApp(func(app *commands.App) error {
				value, err := app.ReadBatchFiles(args[0], all)
				if err != nil {
					return err
				}
				switch v := value.(type) {
				case types.BatchRecord:
					return r.Batch(v)
				case []types.LinkEntry:
					return r.Entries(v)
				default:
					return fmt.Errorf(MsgErrUnknownShow, value)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, MsgFlagAll)
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "remove ID...",
		Aliases:           []string{"rm"},
		Short:             MsgRemoveShort,
		Long:              MsgRemoveLong,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: batchIDsCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := renderer(cmd)
			if err != nil {
				return err
			}

			batches := make([]types.BatchRecord, 0, len(args))
			for _, id := range args {
				batches = append(batches, types.BatchRecord{ID: id})
			}

			return withApp(func(app *commands.App) error {
				result, err := app.RemoveBatches(batches)
				if result != nil {
					if rerr := r.Removed(result.Removed, result.Kept); rerr != nil {
						return rerr
					}
				}
				return err
			})
		},
	}
}

func newInvokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "invoke",
		Short:   MsgInvokeShort,
		Long:    MsgInvokeLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *commands.App) error {
				return ipc.NewDispatcher(app).Serve(cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func newConfigCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := cfg.Marshal(format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "output", config.FormatYAML, MsgFlagConfigFormat)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
