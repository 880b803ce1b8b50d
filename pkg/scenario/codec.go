package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/overflow/pkg/errors"
)

// Format is a scenario serialization.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ParseFormat parses "toml" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTOML, FormatJSON:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown scenario format %q", s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer scenario format from %q", path)
}

// Load reads and validates a scenario file. A scenario without a name is
// named after the file.
func Load(path string) (*Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	s, err := Decode(f, format)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Decode reads a scenario in the given format. It does not validate.
func Decode(r io.Reader, format Format) (*Scenario, error) {
	var s Scenario
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown field %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown scenario format %q", format)
	}
	return &s, nil
}

// Encode writes s in the given format.
func Encode(w io.Writer, s *Scenario, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown scenario format %q", format)
}

// Marshal encodes s as JSON.
func Marshal(s *Scenario) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
