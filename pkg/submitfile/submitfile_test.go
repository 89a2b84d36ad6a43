package submitfile_test

import (
	"math"
	"strings"
	"testing"

	g "github.com/onsi/gomega"

	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/glidein"
	"glidein-submit/pkg/submitfile"
)

func slurmConfig() *glidein.Config {
	return &glidein.Config{
		Glidein: glidein.Glidein{
			Tarball: "glidein.tar.gz",
			Script:  "glidein_start.sh",
			Cvmfs:   true,
		},
		Cluster: glidein.Cluster{
			Scheduler:     glidein.SchedulerSlurm,
			SubmitCommand: "sbatch",
			WalltimeHours: 14,
			MemPerCore:    3000,
		},
		SubmitFile: glidein.SubmitFile{
			Filename: "submit",
			LocalDir: "$TMPDIR",
		},
	}
}

func TestSize_growsCPUsToFitMemory(t *testing.T) {
	g.RegisterTestingT(t)

	res, err := submitfile.Size(slurmConfig(), submitfile.Request{Memory: 7000, CPUs: 1})

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(res.CPUs).To(g.Equal(3))
	g.Expect(res.Memory).To(g.Equal(int64(9000)))
	g.Expect(res.Nodes).To(g.Equal(1))
	g.Expect(res.WalltimeHours).To(g.Equal(14))
}

func TestSize_memoryDefaultsToCores(t *testing.T) {
	g.RegisterTestingT(t)

	res, err := submitfile.Size(slurmConfig(), submitfile.Request{CPUs: 0})

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(res.CPUs).To(g.Equal(1))
	g.Expect(res.Memory).To(g.Equal(int64(3000)))
}

func TestSize_gpuKeepsRequest(t *testing.T) {
	g.RegisterTestingT(t)

	res, err := submitfile.Size(slurmConfig(), submitfile.Request{Memory: 20000, CPUs: 1, GPUs: 1})

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(res.CPUs).To(g.Equal(1))
	g.Expect(res.GPUs).To(g.Equal(1))
	g.Expect(res.Memory).To(g.Equal(int64(20000)))
}

func TestSize_largeRequest(t *testing.T) {
	g.RegisterTestingT(t)

	res, err := submitfile.Size(slurmConfig(), submitfile.Request{Memory: 1 << 50, CPUs: 1})

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(res.CPUs).To(g.Equal(375299968948))
	g.Expect(res.Memory).To(g.Equal(int64(1125899906844000)))
}

func TestSize_exactFit(t *testing.T) {
	g.RegisterTestingT(t)

	res, err := submitfile.Size(slurmConfig(), submitfile.Request{Memory: 9000, CPUs: 1})

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(res.CPUs).To(g.Equal(3))
	g.Expect(res.Memory).To(g.Equal(int64(9000)))
}

func TestSize_requestTooLarge(t *testing.T) {
	g.RegisterTestingT(t)

	_, err := submitfile.Size(slurmConfig(), submitfile.Request{Memory: math.MaxInt64, CPUs: 1})
	g.Expect(err).To(g.MatchError(glerrors.ErrRequestTooLarge))

	_, err = submitfile.Size(slurmConfig(), submitfile.Request{CPUs: math.MaxInt})
	g.Expect(err).To(g.MatchError(glerrors.ErrRequestTooLarge))
}

func TestSize_memPerCoreRequired(t *testing.T) {
	g.RegisterTestingT(t)

	cfg := slurmConfig()
	cfg.Cluster.MemPerCore = 0

	_, err := submitfile.Size(cfg, submitfile.Request{Memory: 10, CPUs: 1})

	g.Expect(err).To(g.MatchError(glerrors.ErrMemPerCoreRequired))
}

func TestSize_wholeNode(t *testing.T) {
	g.RegisterTestingT(t)

	cfg := slurmConfig()
	cfg.Cluster.WholeNode = true
	cfg.Cluster.WholeNodeCPUs = 28
	cfg.Cluster.WholeNodeMemory = 128000
	cfg.Cluster.WholeNodeDisk = 500000

	res, err := submitfile.Size(cfg, submitfile.Request{Memory: 1000, CPUs: 1})

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(res).To(g.Equal(submitfile.Resources{
		Nodes:         1,
		CPUs:          28,
		Memory:        128000,
		Disk:          500000,
		WalltimeHours: 14,
		Exclusive:     true,
	}))
}

func TestSize_nodeKinds(t *testing.T) {
	g.RegisterTestingT(t)

	cfg := slurmConfig()
	cfg.Cluster.CPUOnly = true
	_, err := submitfile.Size(cfg, submitfile.Request{GPUs: 1})
	g.Expect(err).To(g.MatchError(glerrors.ErrGPUNotAllowed))

	cfg = slurmConfig()
	cfg.Cluster.GPUOnly = true
	_, err = submitfile.Size(cfg, submitfile.Request{CPUs: 4})
	g.Expect(err).To(g.MatchError(glerrors.ErrGPURequired))

	_, err = submitfile.Size(nil, submitfile.Request{})
	g.Expect(err).To(g.MatchError(glerrors.ErrConfigRequired))
}

func TestRender_envQuoting(t *testing.T) {
	g.RegisterTestingT(t)

	cfg := slurmConfig()
	cfg.CustomEnv = map[string]string{
		"EMPTY":    "",
		"HOME_DIR": "${HOME}/x",
		"MULTI":    "a\nb",
		"QUOTE":    "it's",
		"TAB":      "tab\there",
		"WORK":     "$LOCAL/work dir",
	}

	script, err := submitfile.Render(cfg, submitfile.Resources{Nodes: 1, CPUs: 1, Memory: 3000, WalltimeHours: 14}, submitfile.Options{})
	g.Expect(err).NotTo(g.HaveOccurred())

	out := string(script)
	g.Expect(out).To(g.ContainSubstring("export EMPTY=''\n"))
	g.Expect(out).To(g.ContainSubstring("export HOME_DIR=\"${HOME}\"/x\n"))
	g.Expect(out).To(g.ContainSubstring("export MULTI='a\nb'\n"))
	g.Expect(out).To(g.ContainSubstring("export QUOTE='it'\"'\"'s'\n"))
	g.Expect(out).To(g.ContainSubstring("export TAB='tab\there'\n"))
	g.Expect(out).To(g.ContainSubstring("export WORK=\"$LOCAL\"'/work dir'\n"))
}

func TestRender_slurm(t *testing.T) {
	g.RegisterTestingT(t)

	cfg := slurmConfig()
	res, err := submitfile.Size(cfg, submitfile.Request{Memory: 5000, CPUs: 1})
	g.Expect(err).NotTo(g.HaveOccurred())

	out, err := submitfile.Render(cfg, res, submitfile.Options{SubmitID: "abc"})

	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(string(out)).To(g.Equal(`#!/bin/bash
#SBATCH --job-name=glidein
#SBATCH --nodes=1
#SBATCH --ntasks=1
#SBATCH --cpus-per-task=2
#SBATCH --mem=6000M
#SBATCH --time=14:00:00
#SBATCH --output=glidein-%j.out
#SBATCH --error=glidein-%j.err
export MEMORY=6000
export CPUS=2
export CVMFS=True
export GLIDEIN_SUBMIT_ID=abc

cd $TMPDIR

ln -s $SLURM_SUBMIT_DIR/glidein.tar.gz glidein.tar.gz
ln -s $SLURM_SUBMIT_DIR/glidein_start.sh glidein_start.sh
./glidein_start.sh
`))
}

func TestRender_customSectionsInOrder(t *testing.T) {
	g.RegisterTestingT(t)

	cfg := slurmConfig()
	cfg.Glidein.Location = "$HOME/glidein"
	cfg.Glidein.Cvmfs = false
	cfg.Cluster.Partition = "GPU"
	cfg.Cluster.Account = "phy123"
	cfg.SubmitFile.CustomHeader = "#SBATCH --export=ALL\n#SBATCH --no-requeue"
	cfg.SubmitFile.CustomMiddle = "module load cuda"
	cfg.SubmitFile.CustomEnd = "rm -rf $TMPDIR/*"
	cfg.CustomEnv = map[string]string{"http_proxy": "http://squid:3128", "GLIDEIN_Site": "Bridges"}

	out, err := submitfile.Render(cfg, submitfile.Resources{Nodes: 1, CPUs: 1, GPUs: 2, Memory: 8000, Disk: 1000, WalltimeHours: 48}, submitfile.Options{})
	g.Expect(err).NotTo(g.HaveOccurred())

	script := string(out)
	ordered := []string{
		"#!/bin/bash\n",
		"#SBATCH --gres=gpu:2\n",
		"#SBATCH --tmp=1000M\n",
		"#SBATCH --partition=GPU\n",
		"#SBATCH --account=phy123\n",
		"#SBATCH --export=ALL\n#SBATCH --no-requeue\n",
		"module load cuda\n",
		"export MEMORY=8000\n",
		"export DISK=1000\n",
		"export GPUS=$CUDA_VISIBLE_DEVICES\n",
		"export CVMFS=False\n",
		"export GLIDEIN_Site=Bridges\n",
		"export http_proxy=http://squid:3128\n",
		"cd $TMPDIR\n",
		"ln -s $HOME/glidein/glidein.tar.gz glidein.tar.gz\n",
		"./glidein_start.sh\n",
		"rm -rf $TMPDIR/*\n",
	}

	last := -1
	for _, part := range ordered {
		idx := strings.Index(script, part)
		g.Expect(idx).To(g.BeNumerically(">", last), "expected %q after previous parts in:\n%s", part, script)
		last = idx
	}

	g.Expect(script).NotTo(g.ContainSubstring("GLIDEIN_SUBMIT_ID"))
}

func TestRender_pbs(t *testing.T) {
	g.RegisterTestingT(t)

	cfg := slurmConfig()
	cfg.Cluster.Scheduler = glidein.SchedulerPBS

	out, err := submitfile.Render(cfg, submitfile.Resources{Nodes: 1, CPUs: 2, GPUs: 1, Memory: 6000, WalltimeHours: 14}, submitfile.Options{})
	g.Expect(err).NotTo(g.HaveOccurred())

	script := string(out)
	g.Expect(script).To(g.ContainSubstring("#PBS -l nodes=1:ppn=2:gpus=1\n"))
	g.Expect(script).To(g.ContainSubstring("#PBS -l mem=6000mb,pmem=3000mb\n"))
	g.Expect(script).To(g.ContainSubstring("#PBS -l walltime=14:00:00\n"))
	g.Expect(script).To(g.ContainSubstring("#PBS -o $HOME/glidein/out/${PBS_JOBID}.out\n"))
	g.Expect(script).To(g.ContainSubstring("ln -s $PBS_O_WORKDIR/glidein_start.sh glidein_start.sh\n"))
	g.Expect(script).NotTo(g.ContainSubstring("#SBATCH"))
}

func TestRender_unsupportedScheduler(t *testing.T) {
	g.RegisterTestingT(t)

	cfg := slurmConfig()
	cfg.Cluster.Scheduler = "lsf"

	_, err := submitfile.Render(cfg, submitfile.Resources{}, submitfile.Options{})

	g.Expect(err).To(g.MatchError(glerrors.NewUnsupportedScheduler("lsf")))
}

func TestFileName(t *testing.T) {
	g.RegisterTestingT(t)

	g.Expect(submitfile.FileName(slurmConfig())).To(g.Equal("submit.slurm"))
}
