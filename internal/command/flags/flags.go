package flags

import (
	"github.com/spf13/cobra"

	"glidein-submit/internal/config"
	"glidein-submit/pkg/defaults"
	"glidein-submit/pkg/export"
)

const (
	siteFileFlag    = "config"
	memoryFlag      = "memory"
	cpusFlag        = "cpus"
	gpusFlag        = "gpus"
	diskFlag        = "disk"
	outputFlag      = "output"
	countFlag       = "count"
	dirFlag         = "dir"
	dryRunFlag      = "dry-run"
	metricsFileFlag = "metrics-file"
	formatFlag      = "format"
)

// AddSiteFlagsToCommand will add the site file flag to the supplied command.
func AddSiteFlagsToCommand(cmd *cobra.Command, cfg *config.Config) {
	cmd.PersistentFlags().StringVarP(&cfg.SiteFile,
		siteFileFlag,
		"c",
		defaults.ConfigFile,
		"The path to the site configuration file.")
}

// AddRequestFlagsToCommand will add the resource request flags to the supplied command.
func AddRequestFlagsToCommand(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.Request.Memory,
		memoryFlag,
		"",
		"Memory wanted by the glidein, in MB or with a unit suffix (4GB). Defaults to the memory of the requested cores.")

	cmd.Flags().IntVar(&cfg.Request.CPUs,
		cpusFlag,
		1,
		"Number of cores wanted by the glidein.")

	cmd.Flags().IntVar(&cfg.Request.GPUs,
		gpusFlag,
		0,
		"Number of GPUs wanted by the glidein.")

	cmd.Flags().StringVar(&cfg.Request.Disk,
		diskFlag,
		"",
		"Local disk wanted by the glidein, in MB or with a unit suffix.")
}

// AddRenderFlagsToCommand will add the render flags to the supplied command.
func AddRenderFlagsToCommand(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVarP(&cfg.Render.Output,
		outputFlag,
		"o",
		"",
		"Write the submit file to this path instead of stdout.")
}

// AddSubmitFlagsToCommand will add the submission flags to the supplied command.
func AddSubmitFlagsToCommand(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().IntVar(&cfg.Submit.Count,
		countFlag,
		1,
		"Number of glideins to submit. Capped by limit_per_submit.")

	cmd.Flags().StringVar(&cfg.Submit.Dir,
		dirFlag,
		".",
		"The directory the submit files are written to.")

	cmd.Flags().BoolVar(&cfg.Submit.DryRun,
		dryRunFlag,
		false,
		"Write the submit files but do not run the submit command.")

	cmd.Flags().StringVar(&cfg.Submit.MetricsFile,
		metricsFileFlag,
		"",
		"Write submission metrics to this file in the node-exporter textfile format.")
}

// AddDumpFlagsToCommand will add the dump flags to the supplied command.
func AddDumpFlagsToCommand(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVarP(&cfg.Dump.Format,
		formatFlag,
		"f",
		export.FormatINI,
		"Output format, one of ini, json, yaml or toml.")
}
