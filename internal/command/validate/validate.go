package validate

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"glidein-submit/internal/config"
	"glidein-submit/pkg/flags"
	"glidein-submit/pkg/log"
)

func NewCommand(cfg *config.Config, fs afero.Fs) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a site configuration file",
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

			log.GetLogger(c.Context()).WithField("sections", rec.Sections()).Debug("site file parsed")

			out := c.OutOrStdout()
			fmt.Fprintf(out, "%s: valid\n", cfg.SiteFile)
			fmt.Fprintf(out, "  site:       %s\n", site.Glidein.Site)
			fmt.Fprintf(out, "  scheduler:  %s (%s)\n", site.Cluster.Scheduler, site.Cluster.SubmitCommand)
			fmt.Fprintf(out, "  walltime:   %dh\n", site.Cluster.WalltimeHours)
			fmt.Fprintf(out, "  memory:     %d MB per core\n", site.Cluster.MemPerCore)

			if site.Cluster.WholeNode {
				fmt.Fprintf(out, "  whole node: %d cores, %d MB, %d gpus\n",
					site.Cluster.WholeNodeCPUs, site.Cluster.WholeNodeMemory, site.Cluster.WholeNodeGPUs)
			}

			if site.Cluster.LimitPerSubmit > 0 {
				fmt.Fprintf(out, "  limit:      %d per submit\n", site.Cluster.LimitPerSubmit)
			}

			return nil
		},
	}

	return cmd, nil
}
