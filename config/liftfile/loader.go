package liftfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Format is a supported configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
	ErrInvalidFile       = errors.New("invalid lift configuration")
)

var constructIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// FormatFromPath picks the syntax from the file extension.
func FormatFromPath(filePath string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filePath)
	}
}

// Load reads the configuration file at filePath. A missing file is not an error: it returns
// a nil File, meaning no constructs are declared.
func Load(filePath string) (*File, error) {
	format, err := FormatFromPath(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading lift config file %s: %w", filePath, err)
	}

	file, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return file, nil
}

// Parse decodes data and checks that every construct has a usable id and a type.
func Parse(data []byte, format Format) (*File, error) {
	var file File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) validate() error {
	for _, id := range f.ConstructIDs() {
		if !constructIDPattern.MatchString(id) {
			return fmt.Errorf("%w: construct id %q must only contain letters, digits, '-' and '_'", ErrInvalidFile, id)
		}
		if Type(f.Constructs[id]) == "" {
			return fmt.Errorf("%w: construct %q has no type", ErrInvalidFile, id)
		}
	}
	return nil
}

// ConstructIDs returns the declared construct ids, sorted.
func (f *File) ConstructIDs() []string {
	if f == nil {
		return nil
	}
	ids := lo.Keys(f.Constructs)
	sort.Strings(ids)
	return ids
}
