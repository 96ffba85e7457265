package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/speaker/internal/app"
	"github.com/dmitrijs2005/speaker/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and what every command needs to reach the
// application.
type RootOptions struct {
	Format string // "json" | "text"

	config  *config.Config
	appOpts []app.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// open builds the application for one command run. The caller closes it.
func (o *RootOptions) open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, o.config, o.appOpts...)
}

// withApp runs fn against a freshly opened application.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// NewRootCommand creates the root command. cfg carries the settings already
// taken from file, environment and settings flags.
func NewRootCommand(cfg *config.Config, appOpts ...app.Option) *cobra.Command {
	opts := &RootOptions{config: cfg, appOpts: appOpts}

	cmd := &cobra.Command{
		Use:   "speaker",
		Short: "Manage the speaker voice store",
		Long: "Inspect and maintain the embedded voice store: accounts, voices,\n" +
			"emotion marks, preferences and marketplace listings.\n\n" +
			"Settings flags (also SPEAKER_* variables or a -c config file):\n" + config.Usage(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewVoiceCommand(opts))
	cmd.AddCommand(NewPublishCommand(opts))
	cmd.AddCommand(NewListingsCommand(opts))
	cmd.AddCommand(NewPrefsCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))

	return cmd
}
