package command

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdflags "glidein-submit/internal/command/flags"
	"glidein-submit/internal/command/dump"
	"glidein-submit/internal/command/render"
	"glidein-submit/internal/command/submit"
	"glidein-submit/internal/command/validate"
	"glidein-submit/internal/config"
	"glidein-submit/internal/version"
	"glidein-submit/pkg/defaults"
	"glidein-submit/pkg/flags"
	"glidein-submit/pkg/log"
	pkgsubmit "glidein-submit/pkg/submit"
)

func NewRootCommand() (*cobra.Command, error) {
	return newRootCommand(afero.NewOsFs(), pkgsubmit.ExecRunner{})
}

func newRootCommand(fs afero.Fs, runner pkgsubmit.Runner) (*cobra.Command, error) {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:           "glidein",
		Short:         "glidein - submit pilot jobs to HPC batch schedulers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags.BindCommandToViper(cmd)

			if err := log.Configure(&cfg.Logging); err != nil {
				return fmt.Errorf("configuring logging: %w", err)
			}

			logger := log.GetLogger(cmd.Context()).WithField("command", cmd.Name())
			cmd.SetContext(log.WithLogger(cmd.Context(), logger))

			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			return c.Help()
		},
	}

	log.AddFlagsToCommand(cmd, &cfg.Logging)
	cmdflags.AddSiteFlagsToCommand(cmd, cfg)

	if err := addRootSubCommands(cmd, cfg, fs, runner); err != nil {
		return nil, fmt.Errorf("adding subcommands: %w", err)
	}

	cobra.OnInitialize(initCobra)

	return cmd, nil
}

func initCobra() {
	viper.SetEnvPrefix(defaults.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.AddConfigPath(defaults.ConfigurationDir)

	_ = viper.ReadInConfig()
}

func addRootSubCommands(cmd *cobra.Command, cfg *config.Config, fs afero.Fs, runner pkgsubmit.Runner) error {
	validateCmd, err := validate.NewCommand(cfg, fs)
	if err != nil {
		return fmt.Errorf("creating validate command: %w", err)
	}

	dumpCmd, err := dump.NewCommand(cfg, fs)
	if err != nil {
		return fmt.Errorf("creating dump command: %w", err)
	}

	renderCmd, err := render.NewCommand(cfg, fs)
	if err != nil {
		return fmt.Errorf("creating render command: %w", err)
	}

	submitCmd, err := submit.NewCommand(cfg, fs, runner)
	if err != nil {
		return fmt.Errorf("creating submit command: %w", err)
	}

	cmd.AddCommand(validateCmd)
	cmd.AddCommand(dumpCmd)
	cmd.AddCommand(renderCmd)
	cmd.AddCommand(submitCmd)
	cmd.AddCommand(versionCommand())

	return nil
}

func versionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of glidein",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				long, short bool
				err         error
			)

			if long, err = cmd.Flags().GetBool("long"); err != nil {
				return err
			}

			if short, err = cmd.Flags().GetBool("short"); err != nil {
				return err
			}

			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.Version)

				return nil
			}

			if long {
				fmt.Fprintf(
					cmd.OutOrStdout(),
					"%s\n  Version:    %s\n  CommitHash: %s\n  BuildDate:  %s\n",
					version.PackageName,
					version.Version,
					version.CommitHash,
					version.BuildDate,
				)

				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.PackageName, version.Version)

			return nil
		},
	}

	_ = cmd.Flags().Bool("long", false, "Print long version information")
	_ = cmd.Flags().Bool("short", false, "Print short version information")

	return cmd
}
