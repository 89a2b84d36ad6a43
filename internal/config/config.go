package config

import (
	"fmt"

	"github.com/spf13/afero"

	"glidein-submit/pkg/glidein"
	"glidein-submit/pkg/inifile"
	"glidein-submit/pkg/log"
	"glidein-submit/pkg/submitfile"
)

// Config holds the command line configuration of the tool.
type Config struct {
	// SiteFile is the path of the site configuration file.
	SiteFile string
	Logging  log.Config

	Request struct {
		Memory string
		CPUs   int
		GPUs   int
		Disk   string
	}
	Render struct {
		Output string
	}
	Submit struct {
		Count       int
		Dir         string
		DryRun      bool
		MetricsFile string
	}
	Dump struct {
		Format string
	}
}

// LoadSite loads the site file. A site in debug mode turns on debug logging.
func (c *Config) LoadSite(fs afero.Fs) (*glidein.Config, *inifile.Record, error) {
	site, rec, err := glidein.LoadFile(fs, c.SiteFile)
	if err != nil {
		return nil, nil, err
	}

	if site.Mode.Debug {
		log.RaiseToDebug()
	}

	return site, rec, nil
}

// SubmitRequest converts the request flags into a sizing request.
func (c *Config) SubmitRequest() (submitfile.Request, error) {
	req := submitfile.Request{
		CPUs: c.Request.CPUs,
		GPUs: c.Request.GPUs,
	}

	var err error

	if c.Request.Memory != "" {
		if req.Memory, err = glidein.ParseMegabytes(c.Request.Memory); err != nil {
			return req, fmt.Errorf("parsing --memory %q: %w", c.Request.Memory, err)
		}
	}

	if c.Request.Disk != "" {
		if req.Disk, err = glidein.ParseMegabytes(c.Request.Disk); err != nil {
			return req, fmt.Errorf("parsing --disk %q: %w", c.Request.Disk, err)
		}
	}

	return req, nil
}
