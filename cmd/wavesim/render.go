package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/wavesim/wavesim/pkg/models"
	"github.com/wavesim/wavesim/pkg/utils"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type summaryRow struct {
	label string
	value string
}

func summaryRows(result *models.SimulationResult) []summaryRow {
	s := result.Statistics
	return []summaryRow{
		{"Points", fmt.Sprintf("%d", result.Len())},
		{"Mean", fixed3(s.Mean)},
		{"Std Dev", fixed3(s.Std)},
		{"Min", fixed3(s.Min)},
		{"Max", fixed3(s.Max)},
	}
}

// fixed3 formats v with three decimals, without printing "-0.000".
func fixed3(v float64) string {
	r := utils.Round(v, 3)
	if r == 0 {
		r = 0 // drops the sign of -0
	}
	return fmt.Sprintf("%.3f", r)
}

// renderSummary prints the result statistics, boxed and colored on a
// terminal and as plain aligned text otherwise.
func renderSummary(w io.Writer, params models.Parameters, result *models.SimulationResult) {
	header := fmt.Sprintf("amplitude=%g frequency=%g phase=%g points=%d",
		params.Amplitude, params.Frequency, params.Phase, params.Points)
	rows := summaryRows(result)

	if !isTerminal(w) {
		fmt.Fprintln(w, "Simulation Results")
		fmt.Fprintf(w, "Parameters: %s\n", header)
		for _, r := range rows {
			fmt.Fprintf(w, "%-8s %s\n", r.label+":", r.value)
		}
		return
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Simulation Results"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Params") + header)
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r.label) + valueStyle.Render(r.value))
	}
	fmt.Fprintln(w, boxStyle.Render(b.String()))
}
