package bench

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
)

// FormatTable renders results as a bordered terminal table.
func FormatTable(results []Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(r.N),
			fmt.Sprintf("%.2e", r.NCubed),
			fmt.Sprintf("%.4f", r.Mean.Seconds()),
			fmt.Sprintf("%.6f", r.StdDev.Seconds()),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("N", "N^3", "Mean (s)", "StdDev (s)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.String()
}

// FormatLaTeX renders results as a LaTeX table ready to paste into a report.
func FormatLaTeX(results []Result, trials int) string {
	var b strings.Builder
	b.WriteString("\\begin{table}[h!]\n")
	b.WriteString("\\centering\n")
	b.WriteString("\\begin{tabular}{|c|c|c|c|}\n")
	b.WriteString("\\hline\n")
	b.WriteString("\\textbf{N} & \\textbf{Complexity ($N^3$)} & \\textbf{Time (s)} & \\textbf{StdDev (s)} \\\\ \\hline\n")
	for _, r := range results {
		n3 := strings.ReplaceAll(fmt.Sprintf("%.1e", r.NCubed), "+", "")
		fmt.Fprintf(&b, "%d & $%s$ & %.3f & %.3f \\\\ \\hline\n", r.N, n3, r.Mean.Seconds(), r.StdDev.Seconds())
	}
	b.WriteString("\\end{tabular}\n")
	fmt.Fprintf(&b, "\\caption{Execution times (mean of %d runs).}\n", trials)
	b.WriteString("\\label{tab:times}\n")
	b.WriteString("\\end{table}\n")
	return b.String()
}
