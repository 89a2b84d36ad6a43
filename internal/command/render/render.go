package render

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	cmdflags "glidein-submit/internal/command/flags"
	"glidein-submit/internal/config"
	"glidein-submit/pkg/defaults"
	"glidein-submit/pkg/flags"
	"glidein-submit/pkg/log"
	"glidein-submit/pkg/submitfile"
)

func NewCommand(cfg *config.Config, fs afero.Fs) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a glidein submit file",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, _ []string) error {
			flags.BindCommandToViper(c)

			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			return run(c, cfg, fs)
		},
	}

	cmdflags.AddRequestFlagsToCommand(cmd, cfg)
	cmdflags.AddRenderFlagsToCommand(cmd, cfg)

	return cmd, nil
}

func run(c *cobra.Command, cfg *config.Config, fs afero.Fs) error {
	site, _, err := cfg.LoadSite(fs)
	if err != nil {
		return err
	}

	req, err := cfg.SubmitRequest()
	if err != nil {
		return err
	}

	res, err := submitfile.Size(site, req)
	if err != nil {
		return err
	}

	script, err := submitfile.Render(site, res, submitfile.Options{SubmitID: uuid.NewString()})
	if err != nil {
		return err
	}

	if cfg.Render.Output == "" {
		_, err = c.OutOrStdout().Write(script)

		return err
	}

	if err := afero.WriteFile(fs, cfg.Render.Output, script, defaults.DataFilePerm); err != nil {
		return fmt.Errorf("writing submit file %s: %w", cfg.Render.Output, err)
	}

	log.GetLogger(c.Context()).Infof("wrote %s submit file to %s", site.Cluster.Scheduler, cfg.Render.Output)

	return nil
}
