package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

// Terminal styles. color disables itself when stdout is not a terminal or
// NO_COLOR is set.
var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Success writes a green check line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", Green("✓"), fmt.Sprintf(format, args...))
}

// Failure writes a red cross line.
func Failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", Red("✗"), fmt.Sprintf(format, args...))
}

// Warning writes a yellow warning line.
func Warning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", Yellow("⚠"), fmt.Sprintf(format, args...))
}

// OptionRow describes one command-line option.
type OptionRow struct {
	Flag    string
	Env     string
	Default string
	Usage   string
}

// RenderOptions writes rows as a table.
func RenderOptions(w io.Writer, rows []OptionRow) {
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Flag", "Environment", "Default", "Description")
	tbl.WithHeaderFormatter(headerFmt)
	tbl.WithWriter(w)
	for _, r := range rows {
		tbl.AddRow(r.Flag, r.Env, r.Default, r.Usage)
	}
	tbl.Print()
}
