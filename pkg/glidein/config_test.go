package glidein_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	g "github.com/onsi/gomega"
	"github.com/spf13/afero"

	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/glidein"
	"glidein-submit/pkg/inifile"
)

const minimal = `[Cluster]
scheduler = slurm
submit_command = sbatch
walltime_hrs = 14
mem_per_core = 3000

[SubmitFile]
filename = submit
local_dir = $TMPDIR
`

func decode(t *testing.T, content string) (*glidein.Config, error) {
	t.Helper()

	rec, err := inifile.Parse(strings.NewReader(content))
	g.Expect(err).NotTo(g.HaveOccurred())

	return glidein.Decode(rec)
}

func TestLoadFile_bridges(t *testing.T) {
	g.RegisterTestingT(t)

	cfg, rec, err := glidein.LoadFile(afero.NewOsFs(), "testdata/bridges.config")

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(rec.Sections()).To(g.Equal([]string{"Mode", "Glidein", "Cluster", "SubmitFile", "CustomEnv"}))

	g.Expect(cfg.Mode.Debug).To(g.BeTrue())
	g.Expect(cfg.Glidein.Site).To(g.Equal("Bridges"))
	g.Expect(cfg.Glidein.Delay).To(g.Equal(300 * time.Second))
	g.Expect(cfg.Glidein.Tarball).To(g.Equal("glidein.tar.gz"))
	g.Expect(cfg.Glidein.Cvmfs).To(g.BeTrue())

	g.Expect(cfg.Cluster.Scheduler).To(g.Equal(glidein.SchedulerSlurm))
	g.Expect(cfg.Cluster.SubmitCommand).To(g.Equal("sbatch"))
	g.Expect(cfg.Cluster.MaxTotalJobs).To(g.Equal(25))
	g.Expect(cfg.Cluster.LimitPerSubmit).To(g.Equal(5))
	g.Expect(cfg.Cluster.WalltimeHours).To(g.Equal(48))
	g.Expect(cfg.Cluster.MemPerCore).To(g.Equal(int64(4500)))
	g.Expect(cfg.Cluster.WholeNodeMemory).To(g.Equal(int64(128 * 1024)))
	g.Expect(cfg.Cluster.WholeNodeCPUs).To(g.Equal(28))
	g.Expect(cfg.Cluster.CPUOnly).To(g.BeTrue())
	g.Expect(cfg.Cluster.Partition).To(g.Equal("RM-shared"))

	g.Expect(cfg.SubmitFile.LocalDir).To(g.Equal("$LOCAL"))
	g.Expect(cfg.SubmitFile.CustomHeader).To(g.Equal("#SBATCH --export=ALL\n#SBATCH --no-requeue"))

	g.Expect(cfg.CustomEnv).To(g.HaveKeyWithValue("GLIDEIN_Site", "Bridges"))
	g.Expect(cfg.EnvNames()).To(g.Equal([]string{"GLIDEIN_Site", "http_proxy"}))
}

func TestDecode_defaults(t *testing.T) {
	g.RegisterTestingT(t)

	cfg, err := decode(t, minimal)

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(cfg.Mode.Debug).To(g.BeFalse())
	g.Expect(cfg.Glidein.Script).To(g.Equal("glidein_start.sh"))
	g.Expect(cfg.Cluster.WholeNode).To(g.BeFalse())
	g.Expect(cfg.CustomEnv).To(g.BeNil())
}

func TestDecode_missingKeys(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, "[Cluster]\nscheduler = slurm\n")

	g.Expect(err).To(g.MatchError(glerrors.MissingKeysError{Keys: []string{
		"Cluster.submit_command",
		"Cluster.walltime_hrs",
		"Cluster.mem_per_core",
		"SubmitFile.filename",
		"SubmitFile.local_dir",
	}}))
}

func TestDecode_invalidNumber(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, strings.Replace(minimal, "walltime_hrs = 14", "walltime_hrs = fourteen", 1))

	var invalid glerrors.InvalidValueError
	g.Expect(errors.As(err, &invalid)).To(g.BeTrue())
	g.Expect(invalid.Key).To(g.Equal("walltime_hrs"))
	g.Expect(invalid.Value).To(g.Equal("fourteen"))
}

func TestDecode_invalidBool(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, minimal+"\n[Mode]\ndebug = sometimes\n")

	var invalid glerrors.InvalidValueError
	g.Expect(errors.As(err, &invalid)).To(g.BeTrue())
	g.Expect(invalid.Section).To(g.Equal("Mode"))
}

func TestDecode_missingAndInvalid(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, "[Mode]\ndebug = sometimes\n\n[Cluster]\nscheduler = slurm\nmax_total_jobs = many\n")

	var missing glerrors.MissingKeysError
	g.Expect(errors.As(err, &missing)).To(g.BeTrue())
	g.Expect(missing.Keys).To(g.ContainElement("Cluster.submit_command"))

	var invalid glerrors.InvalidValueError
	g.Expect(errors.As(err, &invalid)).To(g.BeTrue())
	g.Expect(err.Error()).To(g.ContainSubstring("debug"))
	g.Expect(err.Error()).To(g.ContainSubstring("max_total_jobs"))
}

func TestDecode_invalidEnvName(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, minimal+"\n[CustomEnv]\nGOOD_NAME = x\nmy-var = y\n")

	var invalid glerrors.InvalidValueError
	g.Expect(errors.As(err, &invalid)).To(g.BeTrue())
	g.Expect(invalid).To(g.Equal(glerrors.InvalidValueError{
		Section: "CustomEnv",
		Key:     "my-var",
		Value:   "my-var",
		Reason:  "not a valid environment variable name",
	}))
}

func TestDecode_unsupportedScheduler(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, strings.Replace(minimal, "scheduler = slurm", "scheduler = lsf", 1))

	g.Expect(err).To(g.MatchError(glerrors.NewUnsupportedScheduler("lsf")))
}

func TestDecode_wholeNodeIncomplete(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, strings.Replace(minimal, "mem_per_core = 3000", "mem_per_core = 3000\nwhole_node = yes\nwhole_node_cpus = 28", 1))

	g.Expect(err).To(g.MatchError(glerrors.ErrWholeNodeIncomplete))
}

func TestDecode_conflictingNodeKinds(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, strings.Replace(minimal, "mem_per_core = 3000", "mem_per_core = 3000\ncpu_only = on\ngpu_only = ON", 1))

	g.Expect(err).To(g.MatchError(glerrors.ErrConflictingNodeKinds))
}

func TestDecode_limitExceedsTotal(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := decode(t, strings.Replace(minimal, "mem_per_core = 3000", "mem_per_core = 3000\nmax_total_jobs = 2\nlimit_per_submit = 5", 1))

	g.Expect(err).To(g.MatchError(glerrors.NewInvalidValue("Cluster", "limit_per_submit", "5", "exceeds max_total_jobs")))
}

func TestDecode_nilRecord(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := glidein.Decode(nil)

	g.Expect(err).To(g.MatchError(glerrors.ErrRecordRequired))
}

func TestParseMegabytes(t *testing.T) {
	g.RegisterTestingT(t)

	mb, err := glidein.ParseMegabytes("4500")
	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(mb).To(g.Equal(int64(4500)))

	mb, err = glidein.ParseMegabytes("4g")
	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(mb).To(g.Equal(int64(4096)))

	_, err = glidein.ParseMegabytes("lots")
	g.Expect(err).To(g.HaveOccurred())
}
