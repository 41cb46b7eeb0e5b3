package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/loopsim/internal/table"
)

func ramp(n int) *table.Table {
	tbl := table.New([]string{"t", "h"}, n)
	for i := 0; i < n; i++ {
		tbl.Append([]float64{float64(i), float64(i) / 10})
	}
	return tbl
}

func press(v Viewer, key string) Viewer {
	var msg tea.KeyMsg
	switch key {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ := v.Update(msg)
	return m.(Viewer)
}

func TestViewerScroll(t *testing.T) {
	v := NewViewer("run", ramp(100), "h", []string{"Process: tank"})
	m, _ := v.Update(tea.WindowSizeMsg{Width: 80, Height: 17})
	v = m.(Viewer)

	// 17 lines minus 7 lines of chrome
	if v.pageSize() != 10 {
		t.Fatalf("expected page size 10, got %d", v.pageSize())
	}

	v = press(v, "down")
	v = press(v, "j")
	if v.Offset() != 2 {
		t.Errorf("expected offset 2, got %d", v.Offset())
	}

	v = press(v, "up")
	if v.Offset() != 1 {
		t.Errorf("expected offset 1, got %d", v.Offset())
	}

	v = press(v, "f")
	if v.Offset() != 11 {
		t.Errorf("expected offset 11 after a page, got %d", v.Offset())
	}

	v = press(v, "G")
	if v.Offset() != 90 {
		t.Errorf("expected offset 90 at the end, got %d", v.Offset())
	}

	v = press(v, "j")
	if v.Offset() != 90 {
		t.Errorf("scrolled past the end: %d", v.Offset())
	}

	v = press(v, "g")
	if v.Offset() != 0 {
		t.Errorf("expected offset 0 at the top, got %d", v.Offset())
	}
}

func TestViewerShortTable(t *testing.T) {
	v := NewViewer("run", ramp(3), "h", nil)
	v = press(v, "G")
	if v.Offset() != 0 {
		t.Errorf("expected no scrolling, got offset %d", v.Offset())
	}

	out := v.View()
	if !strings.Contains(out, "rows 1-3 of 3") {
		t.Errorf("missing footer in:\n%s", out)
	}
}

func TestViewerQuit(t *testing.T) {
	v := NewViewer("run", ramp(3), "h", nil)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestViewerView(t *testing.T) {
	v := NewViewer("tank run", ramp(5), "h", []string{"Target level: 1.5 [m]"})
	out := v.View()

	for _, want := range []string{"tank run", "Target level: 1.5 [m]", "t", "h", "0.4"} {
		if !strings.Contains(out, want) {
			t.Errorf("view is missing %q", want)
		}
	}
}

func TestViewerMetrics(t *testing.T) {
	v := NewViewer("run", ramp(100), "h", nil).WithMetrics(map[string]float64{"iae": 3.25, "saturation": 0.5})
	m, _ := v.Update(tea.WindowSizeMsg{Width: 80, Height: 17})
	v = m.(Viewer)

	// one extra line for the metrics
	if v.pageSize() != 10 {
		t.Fatalf("expected page size 10, got %d", v.pageSize())
	}

	out := v.View()
	iae := strings.Index(out, "iae:")
	sat := strings.Index(out, "saturation:")
	if iae < 0 || sat < 0 || iae > sat {
		t.Errorf("metrics missing or out of order in view:\n%s", out)
	}
	if !strings.Contains(out, "3.25") {
		t.Error("metric value missing")
	}
}

func TestPlot(t *testing.T) {
	out, err := Plot(ramp(20), "h", PlotOptions{Height: 5, Width: 40, Caption: "level"})
	if err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	if !strings.Contains(out, "level") {
		t.Error("caption missing")
	}

	withTarget, err := Plot(ramp(20), "h", PlotOptions{Height: 5, Width: 40, ShowSetpoint: true, Setpoint: 1.5})
	if err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	if withTarget == out {
		t.Error("expected setpoint series to change the chart")
	}
}

func TestPlotErrors(t *testing.T) {
	if _, err := Plot(ramp(5), "P", DefaultPlotOptions()); err == nil {
		t.Error("expected error for unknown column")
	}
	if _, err := Plot(ramp(0), "h", DefaultPlotOptions()); err != ErrNoData {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestPlotColumns(t *testing.T) {
	flows := table.New([]string{"t", "Qd", "Qo"}, 20)
	for i := 0; i < 20; i++ {
		flows.Append([]float64{float64(i), float64(20 - i), float64(i) / 2})
	}

	out, err := PlotColumns(flows, []string{"Qd", "Qo"}, PlotOptions{Height: 6, Width: 40, Caption: "flows"})
	if err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	if !strings.Contains(out, "flows: Qd (default), Qo (red)") {
		t.Errorf("caption missing series labels:\n%s", out)
	}

	single, err := Plot(flows, "Qd", PlotOptions{Height: 6, Width: 40, Caption: "flows"})
	if err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	if single == out {
		t.Error("expected the second series to change the chart")
	}

	if _, err := PlotColumns(flows, nil, DefaultPlotOptions()); err != ErrNoData {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := PlotColumns(flows, []string{"Qd", "Q"}, DefaultPlotOptions()); err == nil {
		t.Error("expected error for unknown column")
	}
	if _, err := PlotColumns(flows, []string{"t", "Qd", "Qo", "t", "Qd", "Qo"}, DefaultPlotOptions()); err == nil {
		t.Error("expected error for too many series")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}, 2); got != "▁█" {
		t.Errorf("unexpected sparkline %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
}
