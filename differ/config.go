/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

package differ

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"github.com/qri-io/jsonschema"
	"github.com/spf13/afero"
	"github.com/stoewer/go-strcase"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// Mode selects the property set of a differential.
type Mode string

// Differential modes. idifference compares the properties of the original
// idifference tool only.
const (
	ModeAll         Mode = "all"
	ModeIDifference Mode = "idifference"
)

// Config controls a differential.
type Config struct {
	Mode Mode
	// Ignore lists file properties that are neither compared nor used as
	// match key.
	Ignore                 []string
	IgnoreVolumeProperties []string
	IgnoreFilenames        []string
	RetainUnchanged        bool
	AnnotateMatches        bool
	RenameRequiresHash     bool
	IgnoreVolumes          bool
	GlomByteRuns           bool
}

// DefaultIgnoreFilenames are pseudo entries that never take part in a
// differential.
var DefaultIgnoreFilenames = []string{".", "..", "$FAT1", "$FAT2", "$OrphanFiles"}

// DefaultConfig returns the configuration used if none is given.
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeAll,
		IgnoreFilenames: append([]string{}, DefaultIgnoreFilenames...),
	}
}

const configSchema = `{
  "$schema": "https://json-schema.org/draft/2019-09/schema#",
  "type": "object",
  "properties": {
    "mode": {"type": "string", "enum": ["all", "idifference"]},
    "ignore": {"type": "array", "items": {"type": "string"}},
    "ignore_volume_properties": {"type": "array", "items": {"type": "string"}},
    "ignore_filenames": {"type": "array", "items": {"type": "string"}},
    "retain_unchanged": {"type": "boolean"},
    "annotate_matches": {"type": "boolean"},
    "rename_requires_hash": {"type": "boolean"},
    "ignore_volumes": {"type": "boolean"},
    "glom_byte_runs": {"type": "boolean"}
  },
  "additionalProperties": false
}`

// LoadConfig reads a configuration file. Comments are allowed.
func LoadConfig(fs afero.Fs, name string) (*Config, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, errors.Wrap(err, "could not read config")
	}
	cfg, err := ParseConfig(data)
	return cfg, errors.Wrapf(err, "invalid config %s", name)
}

// ParseConfig parses a JSON configuration with comments. Missing fields
// get their default values.
func ParseConfig(data []byte) (*Config, error) {
	data = jsonc.ToJSON(data)
	if !gjson.ValidBytes(data) {
		return nil, errors.New("config is not valid JSON")
	}

	schema := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(configSchema), schema); err != nil {
		return nil, errors.Wrap(err, "could not load config schema")
	}
	keyErrs, err := schema.ValidateBytes(context.Background(), data)
	if err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	if len(keyErrs) > 0 {
		var flaws []string
		for _, keyErr := range keyErrs {
			flaws = append(flaws, keyErr.Error())
		}
		return nil, fmt.Errorf("config could not be validated [%s]", strings.Join(flaws, ","))
	}

	cfg := &Config{}
	if mode := gjson.GetBytes(data, "mode"); mode.Exists() {
		cfg.Mode = Mode(mode.String())
	}
	cfg.Ignore = propertyNames(gjson.GetBytes(data, "ignore"))
	cfg.IgnoreVolumeProperties = propertyNames(gjson.GetBytes(data, "ignore_volume_properties"))
	for _, name := range gjson.GetBytes(data, "ignore_filenames").Array() {
		cfg.IgnoreFilenames = append(cfg.IgnoreFilenames, name.String())
	}
	cfg.RetainUnchanged = gjson.GetBytes(data, "retain_unchanged").Bool()
	cfg.AnnotateMatches = gjson.GetBytes(data, "annotate_matches").Bool()
	cfg.RenameRequiresHash = gjson.GetBytes(data, "rename_requires_hash").Bool()
	cfg.IgnoreVolumes = gjson.GetBytes(data, "ignore_volumes").Bool()
	cfg.GlomByteRuns = gjson.GetBytes(data, "glom_byte_runs").Bool()

	if err := mergo.Merge(cfg, DefaultConfig()); err != nil {
		return nil, errors.Wrap(err, "could not apply defaults")
	}
	return cfg, nil
}

// NormalizeProperty converts a property name like "FileSize" or
// "file-size" to its schema form.
func NormalizeProperty(name string) string {
	return strcase.SnakeCase(strings.TrimSpace(name))
}

func propertyNames(list gjson.Result) []string {
	var names []string
	for _, name := range list.Array() {
		names = append(names, NormalizeProperty(name.String()))
	}
	return names
}
