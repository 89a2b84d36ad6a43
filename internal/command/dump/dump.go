package dump

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	cmdflags "glidein-submit/internal/command/flags"
	"glidein-submit/internal/config"
	"glidein-submit/pkg/export"
	"glidein-submit/pkg/flags"
)

func NewCommand(cfg *config.Config, fs afero.Fs) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the loaded site configuration",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, _ []string) error {
			flags.BindCommandToViper(c)

			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			site, rec, err := cfg.LoadSite(fs)
			if err != nil {
				return err
			}

			return export.Encode(c.OutOrStdout(), cfg.Dump.Format, site, rec)
		},
	}

	cmdflags.AddDumpFlagsToCommand(cmd, cfg)

	return cmd, nil
}
