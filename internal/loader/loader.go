// Package loader reads calculation requests from JSON, YAML and XLSX files.
package loader

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/basestation-calc/internal/model"
)

// Format identifies a request file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFor maps a file extension to its Format.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("loader: unsupported request file extension %q (want .json, .yaml, .yml or .xlsx)", filepath.Ext(path))
	}
}

// LoadFile reads the request stored at path.
func LoadFile(path string) (model.CalculationRequest, error) {
	format, err := FormatFor(path)
	if err != nil {
		return model.CalculationRequest{}, err
	}

	if format == FormatXLSX {
		return ReadWorkbook(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.CalculationRequest{}, eris.Wrap(err, "loader: open request file")
	}
	defer f.Close() //nolint:errcheck

	return Decode(f, format)
}

// Decode reads a JSON or YAML request from r.
func Decode(r io.Reader, format Format) (model.CalculationRequest, error) {
	var req model.CalculationRequest

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return req, eris.New("loader: request file is empty")
			}
			return req, eris.Wrap(err, "loader: decode json request")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return req, eris.New("loader: request file is empty")
			}
			return req, eris.Wrap(err, "loader: decode yaml request")
		}
	default:
		return req, eris.Errorf("loader: cannot decode %q from a stream", format)
	}

	return req, nil
}
