// Package submitfile renders the batch scripts that start glideins.
package submitfile

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/glidein"
)

const scriptTemplate = `#!/bin/bash
{{- range .Header }}
{{ . }}
{{- end }}
{{- with .CustomHeader }}
{{ . | trim }}
{{- end }}
{{- with .CustomMiddle }}
{{ . | trim }}
{{- end }}
export MEMORY={{ .Resources.Memory }}
export CPUS={{ .Resources.CPUs }}
{{- if gt .Resources.Disk 0 }}
export DISK={{ .Resources.Disk }}
{{- end }}
{{- if gt .Resources.GPUs 0 }}
export GPUS=$CUDA_VISIBLE_DEVICES
export GPUS="CUDA$GPUS"
{{- end }}
export CVMFS={{ if .Cvmfs }}True{{ else }}False{{ end }}
{{- with .SubmitID }}
export GLIDEIN_SUBMIT_ID={{ . }}
{{- end }}
{{- range .Env }}
export {{ .Name }}={{ .Value | shell }}
{{- end }}

cd {{ .LocalDir }}

ln -s {{ .Location }}/{{ .Tarball }} {{ .Tarball }}
ln -s {{ .Location }}/{{ .Script }} {{ .Script }}
./{{ .Script }}
{{- with .CustomEnd }}
{{ . | trim }}
{{- end }}
`

var script = template.Must(template.New("glidein").Funcs(funcs()).Parse(scriptTemplate))

func funcs() template.FuncMap {
	f := sprig.TxtFuncMap()
	f["shell"] = shellWord

	return f
}

// Options carries per-submission values that are not part of the site file.
type Options struct {
	// SubmitID is exported as GLIDEIN_SUBMIT_ID when set.
	SubmitID string
}

type envVar struct {
	Name  string
	Value string
}

type scriptData struct {
	Header       []string
	CustomHeader string
	CustomMiddle string
	CustomEnd    string
	Resources    Resources
	Cvmfs        bool
	SubmitID     string
	Env          []envVar
	LocalDir     string
	Location     string
	Tarball      string
	Script       string
}

// Render builds the batch script for an allocation.
func Render(cfg *glidein.Config, res Resources, opts Options) ([]byte, error) {
	if cfg == nil {
		return nil, glerrors.ErrConfigRequired
	}

	dialect, err := DialectFor(cfg.Cluster.Scheduler)
	if err != nil {
		return nil, err
	}

	data := scriptData{
		Header:       dialect.Header(cfg, res),
		CustomHeader: cfg.SubmitFile.CustomHeader,
		CustomMiddle: cfg.SubmitFile.CustomMiddle,
		CustomEnd:    cfg.SubmitFile.CustomEnd,
		Resources:    res,
		Cvmfs:        cfg.Glidein.Cvmfs,
		SubmitID:     opts.SubmitID,
		LocalDir:     cfg.SubmitFile.LocalDir,
		Location:     cfg.Glidein.Location,
		Tarball:      cfg.Glidein.Tarball,
		Script:       cfg.Glidein.Script,
	}

	if data.Location == "" {
		data.Location = dialect.SubmitDir()
	}

	for _, name := range cfg.EnvNames() {
		data.Env = append(data.Env, envVar{Name: name, Value: cfg.CustomEnv[name]})
	}

	var buf bytes.Buffer
	if err := script.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s submit file: %w", dialect.Name(), err)
	}

	return buf.Bytes(), nil
}

// FileName is the name the submit file is written under.
func FileName(cfg *glidein.Config) string {
	return cfg.SubmitFile.Filename + "." + cfg.Cluster.Scheduler
}
