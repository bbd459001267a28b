package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/errors"
)

// ReadSettings decodes a settings map from r. Empty input yields empty
// settings.
func ReadSettings(r io.Reader, format Format) (block.Settings, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	s := block.Settings{}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatTOML:
		_, err = toml.Decode(string(data), &s)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown settings format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode %s settings", format)
	}
	return s, nil
}

// ImportSettings reads the settings file at path.
func ImportSettings(path string) (block.Settings, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSettings(f, format)
}
