// Package submit writes glidein submit files and hands them to the scheduler.
package submit

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"glidein-submit/pkg/defaults"
	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/glidein"
	"glidein-submit/pkg/metrics"
	"glidein-submit/pkg/submitfile"
)

var slurmJobID = regexp.MustCompile(`Submitted batch job (\d+)`)

// Config represents the configuration options for a Submitter.
type Config struct {
	// Site is the decoded site file.
	Site *glidein.Config
	// Dir is where submit files are written.
	Dir string
	// DryRun renders and writes files but never runs the submit command.
	DryRun bool
}

// Submission is one rendered glidein and, once submitted, its scheduler job id.
type Submission struct {
	ID        string
	Path      string
	Resources submitfile.Resources
	Script    []byte
	Command   []string
	JobID     string
}

type Submitter struct {
	config   *Config
	fs       afero.Fs
	runner   Runner
	recorder *metrics.Recorder
	logger   *logrus.Entry
	newID    func() string
}

func New(cfg *Config, fs afero.Fs, runner Runner, recorder *metrics.Recorder, logger *logrus.Entry) *Submitter {
	return &Submitter{
		config:   cfg,
		fs:       fs,
		runner:   runner,
		recorder: recorder,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

func (s *Submitter) site() string {
	return s.config.Site.Glidein.Site
}

// Prepare sizes and renders a glidein for req and writes its submit file.
func (s *Submitter) Prepare(req submitfile.Request) (*Submission, error) {
	if s.config.Site == nil {
		return nil, glerrors.ErrConfigRequired
	}

	res, err := submitfile.Size(s.config.Site, req)
	if err != nil {
		return nil, fmt.Errorf("sizing request: %w", err)
	}

	sub := &Submission{
		ID:        s.newID(),
		Path:      filepath.Join(s.config.Dir, submitfile.FileName(s.config.Site)),
		Resources: res,
	}

	sub.Script, err = submitfile.Render(s.config.Site, res, submitfile.Options{SubmitID: sub.ID})
	if err != nil {
		return nil, err
	}

	if err := s.fs.MkdirAll(s.config.Dir, defaults.DataDirPerm); err != nil {
		return nil, fmt.Errorf("creating submit directory %s: %w", s.config.Dir, err)
	}

	if err := afero.WriteFile(s.fs, sub.Path, sub.Script, defaults.DataFilePerm); err != nil {
		return nil, fmt.Errorf("writing submit file %s: %w", sub.Path, err)
	}

	s.recorder.Rendered(s.site())
	s.logger.WithFields(logrus.Fields{
		"submit_id": sub.ID,
		"path":      sub.Path,
		"cpus":      res.CPUs,
		"memory":    res.Memory,
		"gpus":      res.GPUs,
	}).Debug("wrote submit file")

	return sub, nil
}

// Submit runs the site's submit command on a prepared submission.
func (s *Submitter) Submit(ctx context.Context, sub *Submission) error {
	fields := strings.Fields(s.config.Site.Cluster.SubmitCommand)
	if len(fields) == 0 {
		return glerrors.ErrSubmitCommandEmpty
	}

	sub.Command = append(fields, sub.Path)
	logger := s.logger.WithField("submit_id", sub.ID)

	if s.config.DryRun || s.config.Site.Mode.DryRun {
		logger.Infof("dry run, not running %s", strings.Join(sub.Command, " "))
		s.recorder.Submitted(s.site(), metrics.ResultDryRun)

		return nil
	}

	logger.Info(strings.Join(sub.Command, " "))

	out, err := s.runner.Run(ctx, sub.Command[0], sub.Command[1:]...)
	if err != nil {
		s.recorder.Submitted(s.site(), metrics.ResultFailure)

		return fmt.Errorf("%w: %w", glerrors.ErrLaunchFailed, err)
	}

	sub.JobID = parseJobID(out)
	s.recorder.Submitted(s.site(), metrics.ResultSuccess)
	logger.WithField("job_id", sub.JobID).Info("glidein submitted")

	return nil
}

// Run prepares and submits count glideins, capped by limit_per_submit.
func (s *Submitter) Run(ctx context.Context, req submitfile.Request, count int) ([]*Submission, error) {
	if s.config.Site == nil {
		return nil, glerrors.ErrConfigRequired
	}

	if limit := s.config.Site.Cluster.LimitPerSubmit; limit > 0 && count > limit {
		s.logger.Warnf("requested %d glideins, limit_per_submit caps this run at %d", count, limit)
		count = limit
	}

	subs := make([]*Submission, 0, count)

	for i := 0; i < count; i++ {
		sub, err := s.Prepare(req)
		if err != nil {
			return subs, err
		}

		if err := s.Submit(ctx, sub); err != nil {
			return subs, err
		}

		subs = append(subs, sub)
	}

	return subs, nil
}

// parseJobID reads the job id from sbatch or qsub output.
func parseJobID(out []byte) string {
	if m := slurmJobID.FindSubmatch(out); m != nil {
		return string(m[1])
	}

	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}

	return ""
}
