package submitfile

import (
	"fmt"

	"glidein-submit/pkg/defaults"
	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/glidein"
)

const (
	// SlurmDirectivePrefix starts every slurm batch directive.
	SlurmDirectivePrefix = "#SBATCH"
	// PBSDirectivePrefix starts every PBS/Torque batch directive.
	PBSDirectivePrefix = "#PBS"
)

// Dialect renders the scheduler specific parts of a batch script.
type Dialect interface {
	// Name is the scheduler name used in site files.
	Name() string
	// Header returns the resource directives for the allocation.
	Header(cfg *glidein.Config, res Resources) []string
	// SubmitDir is the shell expression for the directory the job was submitted from.
	SubmitDir() string
}

// DialectFor returns the dialect for a scheduler name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case glidein.SchedulerSlurm:
		return slurm{}, nil
	case glidein.SchedulerPBS:
		return pbs{}, nil
	}

	return nil, glerrors.NewUnsupportedScheduler(name)
}

type slurm struct{}

func (slurm) Name() string { return glidein.SchedulerSlurm }

func (slurm) SubmitDir() string { return "$SLURM_SUBMIT_DIR" }

func (slurm) Header(cfg *glidein.Config, res Resources) []string {
	directive := func(format string, args ...any) string {
		return SlurmDirectivePrefix + " " + fmt.Sprintf(format, args...)
	}

	lines := []string{
		directive("--job-name=glidein"),
		directive("--nodes=%d", res.Nodes),
		directive("--ntasks=1"),
		directive("--cpus-per-task=%d", res.CPUs),
		directive("--mem=%dM", res.Memory),
		directive("--time=%d:00:00", res.WalltimeHours),
	}

	if res.GPUs > 0 {
		lines = append(lines, directive("--gres=gpu:%d", res.GPUs))
	}

	if res.Disk > 0 {
		lines = append(lines, directive("--tmp=%dM", res.Disk))
	}

	if res.Exclusive {
		lines = append(lines, directive("--exclusive"))
	}

	if cfg.Cluster.Partition != "" {
		lines = append(lines, directive("--partition=%s", cfg.Cluster.Partition))
	}

	if cfg.Cluster.Account != "" {
		lines = append(lines, directive("--account=%s", cfg.Cluster.Account))
	}

	// slurm does not expand variables in output paths, these are relative to the submit dir.
	return append(lines,
		directive("--output=glidein-%%j.out"),
		directive("--error=glidein-%%j.err"),
	)
}

type pbs struct{}

func (pbs) Name() string { return glidein.SchedulerPBS }

func (pbs) SubmitDir() string { return "$PBS_O_WORKDIR" }

func (pbs) Header(cfg *glidein.Config, res Resources) []string {
	directive := func(format string, args ...any) string {
		return PBSDirectivePrefix + " " + fmt.Sprintf(format, args...)
	}

	nodes := fmt.Sprintf("nodes=%d:ppn=%d", res.Nodes, res.CPUs)
	if res.GPUs > 0 {
		nodes += fmt.Sprintf(":gpus=%d", res.GPUs)
	}

	lines := []string{
		directive("-l %s", nodes),
		directive("-l mem=%dmb,pmem=%dmb", res.Memory, res.Memory/int64(max(res.CPUs, 1))),
		directive("-l walltime=%d:00:00", res.WalltimeHours),
	}

	if res.Disk > 0 {
		lines = append(lines, directive("-l file=%dmb", res.Disk))
	}

	if cfg.Cluster.Partition != "" {
		lines = append(lines, directive("-q %s", cfg.Cluster.Partition))
	}

	if cfg.Cluster.Account != "" {
		lines = append(lines, directive("-A %s", cfg.Cluster.Account))
	}

	return append(lines,
		directive("-o %s/${PBS_JOBID}.out", defaults.OutputDir),
		directive("-e %s/${PBS_JOBID}.err", defaults.OutputDir),
	)
}
