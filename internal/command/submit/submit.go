package submit

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	cmdflags "glidein-submit/internal/command/flags"
	"glidein-submit/internal/config"
	"glidein-submit/pkg/flags"
	"glidein-submit/pkg/log"
	"glidein-submit/pkg/metrics"
	"glidein-submit/pkg/submit"
)

func NewCommand(cfg *config.Config, fs afero.Fs, runner submit.Runner) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Render glidein submit files and hand them to the scheduler",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, _ []string) error {
			flags.BindCommandToViper(c)

			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			return run(c, cfg, fs, runner)
		},
	}

	cmdflags.AddRequestFlagsToCommand(cmd, cfg)
	cmdflags.AddSubmitFlagsToCommand(cmd, cfg)

	return cmd, nil
}

func run(c *cobra.Command, cfg *config.Config, fs afero.Fs, runner submit.Runner) error {
	site, _, err := cfg.LoadSite(fs)
	if err != nil {
		return err
	}

	req, err := cfg.SubmitRequest()
	if err != nil {
		return err
	}

	recorder := metrics.New()
	logger := log.GetLogger(c.Context()).WithField("site", site.Glidein.Site)

	submitter := submit.New(&submit.Config{
		Site:   site,
		Dir:    cfg.Submit.Dir,
		DryRun: cfg.Submit.DryRun,
	}, fs, runner, recorder, logger)

	subs, runErr := submitter.Run(c.Context(), req, cfg.Submit.Count)

	for _, sub := range subs {
		if sub.JobID == "" {
			fmt.Fprintf(c.OutOrStdout(), "%s %s\n", sub.ID, sub.Path)

			continue
		}

		fmt.Fprintf(c.OutOrStdout(), "%s %s job %s\n", sub.ID, sub.Path, sub.JobID)
	}

	if cfg.Submit.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.Submit.MetricsFile); err != nil {
			logger.WithError(err).Warn("could not write metrics")
		}
	}

	return runErr
}
