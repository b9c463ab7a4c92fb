package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a reward template.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"

	MaxLabels      = 64
	MaxLabelLength = 200
)

var (
	ErrInvalidTemplate  = errors.New("invalid reward template")
	ErrTemplateNotFound = errors.New("reward template not found")
	ErrInvalidName      = errors.New("template name must be 1-100 letters, digits, '-' or '_'")
	ErrUnknownFormat    = errors.New("unknown template format")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

// ValidName reports whether name is usable as a template key and file name.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// ParseFormat accepts "json", "yaml" or "yml"; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Validate checks a label list: at least one label, none blank, bounded size.
// Duplicate labels are allowed.
func Validate(labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("%w: no labels", ErrInvalidTemplate)
	}
	if len(labels) > MaxLabels {
		return fmt.Errorf("%w: %d labels exceeds %d", ErrInvalidTemplate, len(labels), MaxLabels)
	}
	for i, l := range labels {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("%w: label %d is blank", ErrInvalidTemplate, i)
		}
		if len(l) > MaxLabelLength {
			return fmt.Errorf("%w: label %d is longer than %d bytes", ErrInvalidTemplate, i, MaxLabelLength)
		}
	}
	return nil
}

// Decode reads a template: a JSON or YAML array of strings.
func Decode(r io.Reader, format Format) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var labels []string
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &labels)
	case FormatYAML:
		err = yaml.Unmarshal(data, &labels)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if err := Validate(labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// Encode writes labels in the given format.
func Encode(w io.Writer, labels []string, format Format) error {
	if err := Validate(labels); err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(labels)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(labels); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// LoadFile reads a template file; the format follows the extension.
func LoadFile(path string) ([]string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	return Decode(f, format)
}

// SaveFile writes a template file atomically (temp file + rename).
func SaveFile(path string, labels []string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".template-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, labels, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
