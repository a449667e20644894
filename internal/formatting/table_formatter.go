package formatting

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"telescope/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// nameColumnMax caps name columns; corporation and alliance names run long.
const nameColumnMax = 32

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	out io.Writer
}

// FormatCharacters renders one row per character.
func (f *TableFormatter) FormatCharacters(characters []store.Character) error {
	if len(characters) == 0 {
		fmt.Fprintf(f.out, "%s\n", text.FgYellow.Sprint("No cached characters. Run 'telescope login' to add one."))
		return nil
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("ID"),
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("CORPORATION"),
		text.FgHiCyan.Sprint("ALLIANCE"),
		text.FgHiCyan.Sprint("SYSTEM"),
		text.FgHiCyan.Sprint("LAST LOGIN"),
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: nameColumnMax, WidthMaxEnforcer: text.Trim},
		{Number: 3, WidthMax: nameColumnMax, WidthMaxEnforcer: text.Trim},
		{Number: 4, WidthMax: nameColumnMax, WidthMaxEnforcer: text.Trim},
	})

	for _, c := range characters {
		corporation, alliance, system := "-", "-", "-"
		if c.Organization != nil {
			corporation = c.Organization.Name
		}
		if c.Affiliation != nil {
			alliance = c.Affiliation.Name
		}
		if c.Location != 0 {
			system = strconv.FormatInt(c.Location, 10)
		}
		lastLogin := "-"
		if !c.LastLogin.IsZero() {
			lastLogin = c.LastLogin.Local().Format(time.DateTime)
		}
		t.AppendRow(table.Row{c.ID, c.Name, corporation, alliance, system, lastLogin})
	}

	t.Render()
	fmt.Fprintf(f.out, "%s\n", text.FgHiBlue.Sprintf("Total: %d", len(characters)))
	return nil
}

// FormatStatus renders the session and cache summary.
func (f *TableFormatter) FormatStatus(status Status, now time.Time) error {
	w := f.out
	fmt.Fprintf(w, "Session:\n")
	switch {
	case !status.LoggedIn:
		fmt.Fprintf(w, "  Status:    %s\n", text.FgYellow.Sprint("Not logged in"))
	case status.Valid:
		fmt.Fprintf(w, "  Status:    %s\n", text.FgGreen.Sprint("Valid"))
		fmt.Fprintf(w, "  Expires:   in %s\n", status.ExpiresAt.Sub(now).Round(time.Second))
	default:
		fmt.Fprintf(w, "  Status:    %s\n", text.FgYellow.Sprint("Expired (refreshed on next use)"))
	}
	if status.CanRefresh {
		fmt.Fprintf(w, "  Refresh:   %s\n", text.FgGreen.Sprint("Available"))
	}

	fmt.Fprintf(w, "\nCache:\n")
	fmt.Fprintf(w, "  Database:   %s\n", status.DatabasePath)
	fmt.Fprintf(w, "  Schema:     v%d\n", status.SchemaVersion)
	fmt.Fprintf(w, "  Characters: %d\n", status.Characters)
	return nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	return t
}
