package formatting

import (
	"encoding/json"
	"io"
	"time"

	"telescope/internal/store"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	out io.Writer
}

// FormatCharacters writes the characters as a JSON array.
func (f *JSONFormatter) FormatCharacters(characters []store.Character) error {
	return f.encode(toRecords(characters))
}

// FormatStatus writes the status as a JSON object.
func (f *JSONFormatter) FormatStatus(status Status, _ time.Time) error {
	return f.encode(status)
}

func (f *JSONFormatter) encode(v interface{}) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
