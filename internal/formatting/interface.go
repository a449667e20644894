// Package formatting renders cached characters and the session status for
// the CLI as a table, JSON or YAML.
//
// Tokens are never part of any output; Status only carries whether they exist.
package formatting

import (
	"fmt"
	"io"
	"os"
	"time"

	"telescope/internal/store"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseFormat validates a --output value. Empty means table.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Out    io.Writer // Defaults to os.Stdout
}

// Status is the printable view of the session and cache.
type Status struct {
	LoggedIn      bool      `json:"loggedIn" yaml:"loggedIn"`
	Valid         bool      `json:"valid" yaml:"valid"`
	ExpiresAt     time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	CanRefresh    bool      `json:"canRefresh" yaml:"canRefresh"`
	Characters    int       `json:"characters" yaml:"characters"`
	SchemaVersion int       `json:"schemaVersion" yaml:"schemaVersion"`
	DatabasePath  string    `json:"databasePath" yaml:"databasePath"`
}

// Formatter renders CLI output.
type Formatter interface {
	FormatCharacters(characters []store.Character) error
	FormatStatus(status Status, now time.Time) error
}

// New creates the formatter for options.Format.
func New(options Options) Formatter {
	if options.Out == nil {
		options.Out = os.Stdout
	}
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{out: options.Out}
	case FormatYAML:
		return &YAMLFormatter{out: options.Out}
	default:
		return &TableFormatter{out: options.Out}
	}
}

// namedRef is the structured form of an organization or affiliation.
type namedRef struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// characterRecord is the structured form of a character.
type characterRecord struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Corporation *namedRef `json:"corporation,omitempty" yaml:"corporation,omitempty"`
	Alliance    *namedRef `json:"alliance,omitempty" yaml:"alliance,omitempty"`
	Portrait    string    `json:"portrait,omitempty" yaml:"portrait,omitempty"`
	Location    int64     `json:"solarSystemId,omitempty" yaml:"solarSystemId,omitempty"`
	LastLogin   time.Time `json:"lastLogin" yaml:"lastLogin"`
	Owner       string    `json:"ownerHash,omitempty" yaml:"ownerHash,omitempty"`
}

func toRecords(characters []store.Character) []characterRecord {
	records := make([]characterRecord, 0, len(characters))
	for _, c := range characters {
		r := characterRecord{
			ID:        c.ID,
			Name:      c.Name,
			Portrait:  c.Portrait,
			Location:  c.Location,
			LastLogin: c.LastLogin,
			Owner:     c.Owner,
		}
		if c.Organization != nil {
			r.Corporation = &namedRef{ID: c.Organization.ID, Name: c.Organization.Name}
		}
		if c.Affiliation != nil {
			r.Alliance = &namedRef{ID: c.Affiliation.ID, Name: c.Affiliation.Name}
		}
		records = append(records, r)
	}
	return records
}
