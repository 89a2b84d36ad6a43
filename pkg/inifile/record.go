// Package inifile loads the sectioned key/value site files into an
// immutable Record and writes them back out.
package inifile

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	glerrors "glidein-submit/pkg/errors"
)

var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:        true,
	IgnoreContinuation:         true,
	PreserveSurroundedQuote:    true,
	AllowPythonMultilineValues: true,
	AllowShadows:               true,
}

type section struct {
	name   string
	keys   []string
	values map[string]string
	// folded maps lower-cased option names to their spelling in the file.
	folded map[string]string
}

// Record is a parsed site file: ordered sections of ordered options.
type Record struct {
	sections []*section
	index    map[string]*section
}

// Parse reads a site file from r.
func Parse(r io.Reader) (*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	data = prepare(data)

	// ini only follows a continuation as far as its read buffer reaches.
	opts := loadOptions
	opts.ReaderBufferSize = len(data)

	file, err := ini.LoadSources(opts, data)
	if err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	return fromFile(file)
}

// Load reads and parses the site file at path.
func Load(fs afero.Fs, path string) (*Record, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration %s: %w", path, err)
	}

	rec, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return rec, nil
}

func fromFile(file *ini.File) (*Record, error) {
	rec := &Record{index: map[string]*section{}}

	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}

		s := &section{name: sec.Name(), values: map[string]string{}, folded: map[string]string{}}

		for _, key := range sec.Keys() {
			lower := strings.ToLower(key.Name())
			if _, seen := s.folded[lower]; seen || len(key.ValueWithShadows()) > 1 {
				return nil, glerrors.DuplicateKeyError{Section: sec.Name(), Key: key.Name()}
			}

			s.keys = append(s.keys, key.Name())
			s.values[key.Name()] = cleanValue(key.Value())
			s.folded[lower] = key.Name()
		}

		rec.sections = append(rec.sections, s)
		rec.index[s.name] = s
	}

	return rec, nil
}

// cleanValue strips the surrounding whitespace of each continuation line
// and drops trailing empty lines.
func cleanValue(v string) string {
	v = strings.TrimPrefix(v, literalMark)
	if !strings.Contains(v, "\n") {
		return v
	}

	lines := strings.Split(v, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Sections returns the section names in file order.
func (r *Record) Sections() []string {
	names := make([]string, 0, len(r.sections))
	for _, s := range r.sections {
		names = append(names, s.name)
	}

	return names
}

// Keys returns the option names of a section in file order.
func (r *Record) Keys(name string) []string {
	s, ok := r.index[name]
	if !ok {
		return nil
	}

	return append([]string(nil), s.keys...)
}

// Section returns a copy of the options of a section, keyed as spelled in the file.
func (r *Record) Section(name string) (map[string]string, bool) {
	s, ok := r.index[name]
	if !ok {
		return nil, false
	}

	values := make(map[string]string, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}

	return values, true
}

// Get returns the value of key in section. Keys are matched case-insensitively.
func (r *Record) Get(name, key string) (string, bool) {
	s, ok := r.index[name]
	if !ok {
		return "", false
	}

	spelled, ok := s.folded[strings.ToLower(key)]
	if !ok {
		return "", false
	}

	return s.values[spelled], true
}

// Has reports whether key is set in section.
func (r *Record) Has(name, key string) bool {
	_, ok := r.Get(name, key)

	return ok
}

// Equal reports whether both records hold the same key/value mapping,
// ignoring order.
func (r *Record) Equal(other *Record) bool {
	if other == nil || len(r.sections) != len(other.sections) {
		return false
	}

	for _, s := range r.sections {
		o, ok := other.index[s.name]
		if !ok || len(o.values) != len(s.values) {
			return false
		}

		for k, v := range s.values {
			if ov, ok := o.values[k]; !ok || ov != v {
				return false
			}
		}
	}

	return true
}

// Map returns the record as nested maps.
func (r *Record) Map() map[string]map[string]string {
	out := make(map[string]map[string]string, len(r.sections))
	for _, s := range r.sections {
		out[s.name], _ = r.Section(s.name)
	}

	return out
}

// WriteTo serializes the record in a form Parse reads back to an equal record.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	file := ini.Empty(loadOptions)

	for _, s := range r.sections {
		sec, err := file.NewSection(s.name)
		if err != nil {
			return 0, fmt.Errorf("creating section %s: %w", s.name, err)
		}

		for _, k := range s.keys {
			if _, err := sec.NewKey(k, s.values[k]); err != nil {
				return 0, fmt.Errorf("creating key %s in section %s: %w", k, s.name, err)
			}
		}
	}

	return file.WriteTo(w)
}


// ParseBool reads v with ini's boolean spellings (1/0, t/f, y/n, yes/no,
// on/off, true/false) in any case.
func ParseBool(v string) (bool, error) {
	key, err := ini.Empty().Section(ini.DefaultSection).NewKey("value", strings.ToLower(v))
	if err != nil {
		return false, err
	}

	return key.Bool()
}
