package glidein

import (
	"errors"
	"strconv"
	"strings"

	units "github.com/docker/go-units"

	glerrors "glidein-submit/pkg/errors"
	"glidein-submit/pkg/inifile"
)

// decoder collects every missing key and bad value so one run reports them all.
type decoder struct {
	rec     *inifile.Record
	missing []string
	errs    []error
}

func (d *decoder) err() error {
	if len(d.missing) == 0 {
		return errors.Join(d.errs...)
	}

	missing := glerrors.MissingKeysError{Keys: d.missing}
	if len(d.errs) == 0 {
		return missing
	}

	return errors.Join(append([]error{missing}, d.errs...)...)
}

func (d *decoder) lookup(section, key string) (string, bool) {
	v, ok := d.rec.Get(section, key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}

	return strings.TrimSpace(v), true
}

func (d *decoder) str(section, key, def string) string {
	v, ok := d.lookup(section, key)
	if !ok {
		return def
	}

	return v
}

func (d *decoder) required(section, key string) string {
	v, ok := d.lookup(section, key)
	if !ok {
		d.missing = append(d.missing, section+"."+key)
	}

	return v
}

func (d *decoder) integer(section, key string, def int) int {
	v, ok := d.lookup(section, key)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		d.errs = append(d.errs, glerrors.NewInvalidValue(section, key, v, "not an integer"))

		return def
	}

	return n
}

func (d *decoder) requiredInteger(section, key string) int {
	if _, ok := d.lookup(section, key); !ok {
		d.missing = append(d.missing, section+"."+key)

		return 0
	}

	return d.integer(section, key, 0)
}

// memory reads a size in MB. Bare numbers are MB, suffixed sizes use binary units.
func (d *decoder) memory(section, key string, def int64) int64 {
	v, ok := d.lookup(section, key)
	if !ok {
		return def
	}

	mb, err := ParseMegabytes(v)
	if err != nil {
		d.errs = append(d.errs, glerrors.NewInvalidValue(section, key, v, err.Error()))

		return def
	}

	return mb
}

func (d *decoder) requiredMemory(section, key string) int64 {
	if _, ok := d.lookup(section, key); !ok {
		d.missing = append(d.missing, section+"."+key)

		return 0
	}

	return d.memory(section, key, 0)
}

func (d *decoder) boolean(section, key string, def bool) bool {
	v, ok := d.lookup(section, key)
	if !ok {
		return def
	}

	b, err := inifile.ParseBool(v)
	if err != nil {
		d.errs = append(d.errs, glerrors.NewInvalidValue(section, key, v, "not a boolean"))

		return def
	}

	return b
}

// ParseMegabytes converts "4500", "4GB" or "128g" into megabytes.
func ParseMegabytes(v string) (int64, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}

	bytes, err := units.RAMInBytes(v)
	if err != nil {
		return 0, err
	}

	return bytes / units.MiB, nil
}
