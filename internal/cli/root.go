// Package cli implements the painel command line: inspection and administration of a medium.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/config"
	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/session"
)

// RootOptions holds the global flags, layered over the PAINEL_* environment.
type RootOptions struct {
	Config  config.Config
	Format  string // "text" | "json" | "yaml"
	Verbose bool

	logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the painel CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	var backend, dataDir, prefix string

	cmd := &cobra.Command{
		Use:   "painel",
		Short: "Inspect and administer a painel medium",
		Long: `Inspect and administer the storage medium shared by the painel dashboard clients.

Settings come from PAINEL_* environment variables; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("backend") {
				cfg.Backend = backend
			}
			if flags.Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if flags.Changed("prefix") {
				cfg.KeyPrefix = prefix
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Config = cfg

			level := cfg.LogLevel
			if !opts.Verbose {
				level = "warn"
			}
			opts.logger, err = logging.New(level)
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&backend, "backend", "file", "medium backend (memory|file|sqlite)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "directory holding the medium")
	cmd.PersistentFlags().StringVar(&prefix, "prefix", schema.DefaultPrefix, "application key prefix")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))
	cmd.AddCommand(NewMatrixCommand(opts))
	cmd.AddCommand(NewAnnounceCommand(opts))
	cmd.AddCommand(NewClearAnnouncementCommand(opts))
	cmd.AddCommand(NewNotifyCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewCopyCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) mediumOptions(backend, dir string) medium.Options {
	return medium.Options{
		Backend:      backend,
		DataDir:      dir,
		PollInterval: o.Config.PollInterval,
		VaultKey:     []byte(o.Config.VaultKey),
		Logger:       o.logger.Named("medium"),
	}
}

// open returns the configured medium and the services over it. The caller closes the medium.
func (o *RootOptions) open() (medium.Durable, *session.Services, error) {
	return o.openWith(session.ServiceOptions{})
}

func (o *RootOptions) openWith(extra session.ServiceOptions) (medium.Durable, *session.Services, error) {
	m, err := medium.Open(o.mediumOptions(o.Config.Backend, o.Config.DataDir))
	if err != nil {
		return nil, nil, fmt.Errorf("open medium: %w", err)
	}
	extra.Keyspace = schema.Keyspace{Prefix: o.Config.KeyPrefix}
	extra.Logger = o.logger
	return m, session.NewServices(m, extra), nil
}
