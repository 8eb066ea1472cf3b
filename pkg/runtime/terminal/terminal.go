package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/de-tools/report-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/report-atlas/pkg/services/account"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	logger  zerolog.Logger
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Logger *zerolog.Logger
	// Explorer overrides the profile registry built from --config and --credentials.
	Explorer account.Explorer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	settings := viper.New()
	settings.SetEnvPrefix(config.EnvPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	cli := &CLI{
		logger: logger,
		env: &commands.Env{
			Settings: settings,
			Tables:   export.NewReporter(opts.Output),
			JSON:     NewReporter(opts.Output),
			Out:      opts.Output,
			Explorer: opts.Explorer,
		},
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	defer func() {
		if err := cli.env.Close(); err != nil {
			cli.logger.Warn().Err(err).Msg("failed to close snapshot database")
		}
	}()
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs is used by tests to drive the command tree.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sfreports",
		Short:         "Salesforce Analytics report explorer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := zerolog.ParseLevel(cli.env.Settings.GetString(commands.KeyLogLevel))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			logger := cli.logger.Level(level)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(commands.KeyProfile, config.CredentialsProfile, "Salesforce profile to use")
	flags.String(commands.KeyConfig, "", "Path to the profile file (default is $HOME/"+config.DefaultRegistryFile+")")
	flags.String(commands.KeyCredentials, config.DefaultCredentialsFile, "Path to an access.json credentials file")
	flags.String(commands.KeyDB, duckdb.DefaultDbPath, "Path to the report snapshot database")
	flags.String(commands.KeyS3Bucket, "", "Upload written files to this S3 bucket")
	flags.String(commands.KeyS3Prefix, "", "Key prefix for S3 uploads")
	flags.String(commands.KeyLogLevel, zerolog.LevelInfoValue, "Log level (trace, debug, info, warn, error)")
	_ = cli.env.Settings.BindPFlags(flags)

	cmd.AddCommand(commands.NewReportCmd(cli.env))
	cmd.AddCommand(commands.NewDashboardCmd(cli.env))
	cmd.AddCommand(commands.NewQueryCmd(cli.env))
	cmd.AddCommand(commands.NewProfilesCmd(cli.env))

	return cmd
}
