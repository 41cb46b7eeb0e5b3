package viz

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/loopsim/internal/table"
)

const cellWidth = 14

// Viewer is a read-only pager over the rows of a table.
type Viewer struct {
	title   string
	summary []string
	metrics []string
	tbl     *table.Table
	primary int

	offset        int
	width, height int
}

func NewViewer(title string, tbl *table.Table, primary string, summary []string) Viewer {
	return Viewer{
		title:   title,
		summary: summary,
		tbl:     tbl,
		primary: tbl.Index(primary),
		width:   80,
		height:  24,
	}
}

// WithMetrics returns a copy of v that shows values on one line below the
// summary, in name order.
func (v Viewer) WithMetrics(values map[string]float64) Viewer {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	v.metrics = make([]string, len(names))
	for i, name := range names {
		v.metrics[i] = MetricLine(name, strconv.FormatFloat(values[name], 'g', 5, 64))
	}
	return v
}

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.offset = v.clamp(v.offset)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return v, tea.Quit
		case "down", "j":
			v.offset = v.clamp(v.offset + 1)
		case "up", "k":
			v.offset = v.clamp(v.offset - 1)
		case "pgdown", "f", " ":
			v.offset = v.clamp(v.offset + v.pageSize())
		case "pgup", "b":
			v.offset = v.clamp(v.offset - v.pageSize())
		case "home", "g":
			v.offset = 0
		case "end", "G":
			v.offset = v.clamp(v.tbl.Len())
		}
	}
	return v, nil
}

// Offset returns the index of the first visible row.
func (v Viewer) Offset() int { return v.offset }

// chrome counts the lines around the rows: title, summary, metrics,
// sparkline, header with its border, footer and one spare line.
func (v Viewer) chrome() int {
	n := len(v.summary) + 6
	if len(v.metrics) > 0 {
		n++
	}
	return n
}

func (v Viewer) pageSize() int {
	return max(1, v.height-v.chrome())
}

func (v Viewer) clamp(offset int) int {
	last := max(0, v.tbl.Len()-v.pageSize())
	return max(0, min(last, offset))
}

func formatCell(value float64) string {
	s := strconv.FormatFloat(value, 'g', 8, 64)
	if len(s) > cellWidth-1 {
		s = strconv.FormatFloat(value, 'e', 4, 64)
	}
	return fmt.Sprintf("%*s", cellWidth, s)
}

func (v Viewer) View() string {
	var sb strings.Builder

	sb.WriteString(Title.Render(v.title))
	sb.WriteString("\n")
	for _, line := range v.summary {
		sb.WriteString(Subtle.Render(line))
		sb.WriteString("\n")
	}
	if len(v.metrics) > 0 {
		sb.WriteString(strings.Join(v.metrics, "  "))
		sb.WriteString("\n")
	}
	if v.primary >= 0 {
		sb.WriteString(Sparkline(v.tbl.Column(v.tbl.Columns[v.primary]), max(1, v.width-2)))
	}
	sb.WriteString("\n")

	var header strings.Builder
	for _, c := range v.tbl.Columns {
		header.WriteString(fmt.Sprintf("%*s", cellWidth, c))
	}
	sb.WriteString(HeaderStyle.Render(header.String()))
	sb.WriteString("\n")

	end := min(v.tbl.Len(), v.offset+v.pageSize())
	for _, row := range v.tbl.Rows[v.offset:end] {
		for j, value := range row {
			cell := formatCell(value)
			if j == v.primary {
				cell = Highlight.Render(cell)
			}
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}

	footer := fmt.Sprintf("rows %d-%d of %d  j/k scroll  f/b page  q quit", min(v.offset+1, end), end, v.tbl.Len())
	sb.WriteString(KeyHint.Render(footer))
	return sb.String()
}

// RunViewer shows v full screen until the user quits.
func RunViewer(v Viewer) error {
	p := tea.NewProgram(v, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
