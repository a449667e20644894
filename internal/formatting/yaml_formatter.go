package formatting

import (
	"io"
	"time"

	"telescope/internal/store"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	out io.Writer
}

// FormatCharacters writes the characters as a YAML sequence.
func (f *YAMLFormatter) FormatCharacters(characters []store.Character) error {
	return f.encode(toRecords(characters))
}

// FormatStatus writes the status as a YAML mapping.
func (f *YAMLFormatter) FormatStatus(status Status, _ time.Time) error {
	return f.encode(status)
}

func (f *YAMLFormatter) encode(v interface{}) error {
	enc := yaml.NewEncoder(f.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
