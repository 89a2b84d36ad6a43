package submitfile

import (
	"math"

	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/glidein"
)

// Request is what the work waiting for a glidein asks for. Memory and Disk are in MB.
type Request struct {
	Memory int64
	CPUs   int
	GPUs   int
	Disk   int64
}

// Resources is the allocation written into the batch script.
type Resources struct {
	Nodes         int
	CPUs          int
	GPUs          int
	Memory        int64
	Disk          int64
	WalltimeHours int
	Exclusive     bool
}

// Size turns a request into the allocation the cluster should be asked for.
func Size(cfg *glidein.Config, req Request) (Resources, error) {
	if cfg == nil {
		return Resources{}, glerrors.ErrConfigRequired
	}

	cluster := cfg.Cluster

	if cluster.GPUOnly && req.GPUs <= 0 {
		return Resources{}, glerrors.ErrGPURequired
	}

	if cluster.CPUOnly && req.GPUs > 0 {
		return Resources{}, glerrors.ErrGPUNotAllowed
	}

	res := Resources{
		Nodes:         1,
		WalltimeHours: cluster.WalltimeHours,
	}

	if cluster.WholeNode {
		res.CPUs = cluster.WholeNodeCPUs
		res.GPUs = cluster.WholeNodeGPUs
		res.Memory = cluster.WholeNodeMemory
		res.Disk = cluster.WholeNodeDisk
		res.Exclusive = true

		return res, nil
	}

	if cluster.MemPerCore <= 0 {
		return Resources{}, glerrors.ErrMemPerCoreRequired
	}

	res.CPUs = max(req.CPUs, 1)
	res.GPUs = max(req.GPUs, 0)
	res.Disk = max(req.Disk, 0)

	if res.GPUs > 0 && req.Memory > 0 {
		res.Memory = req.Memory

		return res, nil
	}

	// Memory on cpu nodes is handed out per core, so the core count grows
	// until the request fits.
	cpus := int64(res.CPUs)
	if res.GPUs == 0 && req.Memory > 0 {
		need := req.Memory / cluster.MemPerCore
		if req.Memory%cluster.MemPerCore != 0 {
			need++
		}

		cpus = max(cpus, need)
	}

	if cpus > math.MaxInt64/cluster.MemPerCore || cpus > math.MaxInt {
		return Resources{}, glerrors.ErrRequestTooLarge
	}

	res.CPUs = int(cpus)
	res.Memory = cpus * cluster.MemPerCore

	return res, nil
}
