// Package glidein holds the typed site configuration decoded from a site file.
package glidein

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/spf13/afero"

	"glidein-submit/pkg/defaults"
	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/inifile"
)

// Section names of a site file.
const (
	SectionMode       = "Mode"
	SectionGlidein    = "Glidein"
	SectionCluster    = "Cluster"
	SectionSubmitFile = "SubmitFile"
	SectionCustomEnv  = "CustomEnv"
)

var envName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Schedulers with a submit file dialect.
const (
	SchedulerSlurm = "slurm"
	SchedulerPBS   = "pbs"
)

// Config is the validated site configuration.
type Config struct {
	Mode       Mode              `json:"mode" yaml:"mode" toml:"mode"`
	Glidein    Glidein           `json:"glidein" yaml:"glidein" toml:"glidein"`
	Cluster    Cluster           `json:"cluster" yaml:"cluster" toml:"cluster"`
	SubmitFile SubmitFile        `json:"submit_file" yaml:"submit_file" toml:"submit_file"`
	CustomEnv  map[string]string `json:"custom_env,omitempty" yaml:"custom_env,omitempty" toml:"custom_env,omitempty"`
}

type Mode struct {
	Debug  bool `json:"debug" yaml:"debug" toml:"debug"`
	DryRun bool `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
}

// Glidein describes where the glidein comes from and what it reports to.
type Glidein struct {
	Address  string        `json:"address,omitempty" yaml:"address,omitempty" toml:"address,omitempty"`
	Site     string        `json:"site,omitempty" yaml:"site,omitempty" toml:"site,omitempty"`
	Tarball  string        `json:"tarball" yaml:"tarball" toml:"tarball"`
	Script   string        `json:"script" yaml:"script" toml:"script"`
	Location string        `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty"`
	Delay    time.Duration `json:"delay" yaml:"delay" toml:"delay"`
	Cvmfs    bool          `json:"cvmfs" yaml:"cvmfs" toml:"cvmfs"`
}

// Cluster describes the batch system and its resource limits. Memory is in MB.
type Cluster struct {
	User            string `json:"user,omitempty" yaml:"user,omitempty" toml:"user,omitempty"`
	OS              string `json:"os,omitempty" yaml:"os,omitempty" toml:"os,omitempty"`
	Scheduler       string `json:"scheduler" yaml:"scheduler" toml:"scheduler"`
	SubmitCommand   string `json:"submit_command" yaml:"submit_command" toml:"submit_command"`
	RunningCommand  string `json:"running_cmd,omitempty" yaml:"running_cmd,omitempty" toml:"running_cmd,omitempty"`
	MaxTotalJobs    int    `json:"max_total_jobs,omitempty" yaml:"max_total_jobs,omitempty" toml:"max_total_jobs,omitempty"`
	LimitPerSubmit  int    `json:"limit_per_submit,omitempty" yaml:"limit_per_submit,omitempty" toml:"limit_per_submit,omitempty"`
	WalltimeHours   int    `json:"walltime_hrs" yaml:"walltime_hrs" toml:"walltime_hrs"`
	MemPerCore      int64  `json:"mem_per_core" yaml:"mem_per_core" toml:"mem_per_core"`
	WholeNode       bool   `json:"whole_node" yaml:"whole_node" toml:"whole_node"`
	WholeNodeMemory int64  `json:"whole_node_memory,omitempty" yaml:"whole_node_memory,omitempty" toml:"whole_node_memory,omitempty"`
	WholeNodeCPUs   int    `json:"whole_node_cpus,omitempty" yaml:"whole_node_cpus,omitempty" toml:"whole_node_cpus,omitempty"`
	WholeNodeGPUs   int    `json:"whole_node_gpus,omitempty" yaml:"whole_node_gpus,omitempty" toml:"whole_node_gpus,omitempty"`
	WholeNodeDisk   int64  `json:"whole_node_disk,omitempty" yaml:"whole_node_disk,omitempty" toml:"whole_node_disk,omitempty"`
	GPUOnly         bool   `json:"gpu_only" yaml:"gpu_only" toml:"gpu_only"`
	CPUOnly         bool   `json:"cpu_only" yaml:"cpu_only" toml:"cpu_only"`
	Partition       string `json:"partition,omitempty" yaml:"partition,omitempty" toml:"partition,omitempty"`
	Account         string `json:"account,omitempty" yaml:"account,omitempty" toml:"account,omitempty"`
}

// SubmitFile controls the generated batch script.
type SubmitFile struct {
	Filename     string `json:"filename" yaml:"filename" toml:"filename"`
	LocalDir     string `json:"local_dir" yaml:"local_dir" toml:"local_dir"`
	CustomHeader string `json:"custom_header,omitempty" yaml:"custom_header,omitempty" toml:"custom_header,omitempty"`
	CustomMiddle string `json:"custom_middle,omitempty" yaml:"custom_middle,omitempty" toml:"custom_middle,omitempty"`
	CustomEnd    string `json:"custom_end,omitempty" yaml:"custom_end,omitempty" toml:"custom_end,omitempty"`
}

// SupportedScheduler reports whether a submit file can be rendered for name.
func SupportedScheduler(name string) bool {
	return name == SchedulerSlurm || name == SchedulerPBS
}

// EnvNames returns the CustomEnv variable names in sorted order.
func (c *Config) EnvNames() []string {
	names := make([]string, 0, len(c.CustomEnv))
	for name := range c.CustomEnv {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// LoadFile reads, parses and decodes the site file at path.
func LoadFile(fs afero.Fs, path string) (*Config, *inifile.Record, error) {
	rec, err := inifile.Load(fs, path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Decode(rec)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, rec, nil
}

// Decode builds a validated Config from a parsed record.
func Decode(rec *inifile.Record) (*Config, error) {
	if rec == nil {
		return nil, glerrors.ErrRecordRequired
	}

	d := &decoder{rec: rec}

	cfg := &Config{
		Mode: Mode{
			Debug:  d.boolean(SectionMode, "debug", false),
			DryRun: d.boolean(SectionMode, "dry_run", false),
		},
		Glidein: Glidein{
			Address:  d.str(SectionGlidein, "address", ""),
			Site:     d.str(SectionGlidein, "site", ""),
			Tarball:  d.str(SectionGlidein, "tarball", defaults.TarballName),
			Script:   d.str(SectionGlidein, "script", defaults.StartScriptName),
			Location: d.str(SectionGlidein, "location", ""),
			Delay:    time.Duration(d.integer(SectionGlidein, "delay", defaults.SubmitDelaySeconds)) * time.Second,
			Cvmfs:    d.boolean(SectionGlidein, "cvmfs", true),
		},
		Cluster: Cluster{
			User:            d.str(SectionCluster, "user", ""),
			OS:              d.str(SectionCluster, "os", ""),
			Scheduler:       d.required(SectionCluster, "scheduler"),
			SubmitCommand:   d.required(SectionCluster, "submit_command"),
			RunningCommand:  d.str(SectionCluster, "running_cmd", ""),
			MaxTotalJobs:    d.integer(SectionCluster, "max_total_jobs", 0),
			LimitPerSubmit:  d.integer(SectionCluster, "limit_per_submit", 0),
			WalltimeHours:   d.requiredInteger(SectionCluster, "walltime_hrs"),
			MemPerCore:      d.requiredMemory(SectionCluster, "mem_per_core"),
			WholeNode:       d.boolean(SectionCluster, "whole_node", false),
			WholeNodeMemory: d.memory(SectionCluster, "whole_node_memory", 0),
			WholeNodeCPUs:   d.integer(SectionCluster, "whole_node_cpus", 0),
			WholeNodeGPUs:   d.integer(SectionCluster, "whole_node_gpus", 0),
			WholeNodeDisk:   d.memory(SectionCluster, "whole_node_disk", 0),
			GPUOnly:         d.boolean(SectionCluster, "gpu_only", false),
			CPUOnly:         d.boolean(SectionCluster, "cpu_only", false),
			Partition:       d.str(SectionCluster, "partition", ""),
			Account:         d.str(SectionCluster, "account", ""),
		},
		SubmitFile: SubmitFile{
			Filename:     d.required(SectionSubmitFile, "filename"),
			LocalDir:     d.required(SectionSubmitFile, "local_dir"),
			CustomHeader: d.str(SectionSubmitFile, "custom_header", ""),
			CustomMiddle: d.str(SectionSubmitFile, "custom_middle", ""),
			CustomEnd:    d.str(SectionSubmitFile, "custom_end", ""),
		},
	}

	if env, ok := rec.Section(SectionCustomEnv); ok && len(env) > 0 {
		cfg.CustomEnv = env

		for _, name := range cfg.EnvNames() {
			if !envName.MatchString(name) {
				d.errs = append(d.errs, glerrors.NewInvalidValue(SectionCustomEnv, name, name,
					"not a valid environment variable name"))
			}
		}
	}

	if err := d.err(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the relations between fields.
func (c *Config) Validate() error {
	if !SupportedScheduler(c.Cluster.Scheduler) {
		return glerrors.NewUnsupportedScheduler(c.Cluster.Scheduler)
	}

	if c.Cluster.WalltimeHours <= 0 {
		return glerrors.NewInvalidValue(SectionCluster, "walltime_hrs",
			fmt.Sprint(c.Cluster.WalltimeHours), "must be positive")
	}

	if c.Cluster.MemPerCore <= 0 {
		return glerrors.NewInvalidValue(SectionCluster, "mem_per_core",
			fmt.Sprint(c.Cluster.MemPerCore), "must be positive")
	}

	if c.Cluster.WholeNode && (c.Cluster.WholeNodeCPUs <= 0 || c.Cluster.WholeNodeMemory <= 0) {
		return glerrors.ErrWholeNodeIncomplete
	}

	if c.Cluster.CPUOnly && c.Cluster.GPUOnly {
		return glerrors.ErrConflictingNodeKinds
	}

	if c.Cluster.MaxTotalJobs > 0 && c.Cluster.LimitPerSubmit > c.Cluster.MaxTotalJobs {
		return glerrors.NewInvalidValue(SectionCluster, "limit_per_submit",
			fmt.Sprint(c.Cluster.LimitPerSubmit), "exceeds max_total_jobs")
	}

	return nil
}
