// Package export writes a loaded site configuration in other formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/glidein"
	"glidein-submit/pkg/inifile"
)

const (
	FormatINI  = "ini"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatINI, FormatJSON, FormatYAML, FormatTOML}

// Encode writes the configuration to w. The ini format re-serializes the
// record as loaded; the others encode the decoded configuration.
func Encode(w io.Writer, format string, cfg *glidein.Config, rec *inifile.Record) error {
	switch format {
	case FormatINI:
		if rec == nil {
			return glerrors.ErrRecordRequired
		}

		_, err := rec.WriteTo(w)

		return err
	case FormatJSON, FormatYAML, FormatTOML:
		if cfg == nil {
			return glerrors.ErrConfigRequired
		}
	default:
		return glerrors.NewUnsupportedFormat(format)
	}

	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(cfg)
	case FormatTOML:
		data, err = toml.Marshal(cfg)
	}

	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}

	_, err = w.Write(data)

	return err
}
