package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/persistorai/actorweb/internal/interaction"
	"github.com/persistorai/actorweb/internal/layout"
	"github.com/persistorai/actorweb/internal/popup"
)

// Tuning holds the layout, popup and highlight knobs a YAML file may
// override. Fields absent from the file keep their defaults; out-of-range
// values are clamped later by each component's Sanitize.
type Tuning struct {
	Layout      layout.Config      `yaml:"layout"`
	Popup       popup.Config       `yaml:"popup"`
	Interaction interaction.Config `yaml:"interaction"`
}

// DefaultTuning returns every component's defaults.
func DefaultTuning() Tuning {
	return Tuning{
		Layout:      layout.DefaultConfig(),
		Popup:       popup.DefaultConfig(),
		Interaction: interaction.DefaultConfig(),
	}
}

// LoadTuning reads a YAML tuning file over the defaults.
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config.
	if err != nil {
		return Tuning{}, fmt.Errorf("reading LAYOUT_CONFIG: %w", err)
	}

	return ParseTuning(data)
}

// ParseTuning decodes YAML over the defaults. Unknown keys are rejected.
func ParseTuning(data []byte) (Tuning, error) {
	t := DefaultTuning()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Tuning{}, fmt.Errorf("parsing tuning YAML: %w", err)
	}

	return t, nil
}
