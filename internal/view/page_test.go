package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testLayout() Layout {
	return Layout{Panels: []PanelLayout{
		{ID: "dashboard-indoor-temp-card", Title: "Temperature", Texts: []string{"indoor-temp-now", "outdoor-temp-now"}, Canvases: []string{"indoor-temp-chart"}},
		{ID: "dashboard-light-card", Texts: []string{"uv-index"}},
	}}
}

func TestPage_NewPanelsAreLoading(t *testing.T) {
	p := NewPage(testLayout())
	panel, err := p.Panel("dashboard-light-card")
	if err != nil {
		t.Fatal(err)
	}
	if !panel.SpinnerVisible || !panel.OverlayVisible || !panel.Blurred || !panel.Loading() {
		t.Fatalf("fresh panel should be loading: %+v", panel)
	}
	if p.Progress() != 100 {
		t.Fatalf("progress = %v", p.Progress())
	}
}

func TestPage_OnlyRegisteredElements(t *testing.T) {
	p := NewPage(testLayout())

	if err := p.SetText("indoor-temp-now", "21.5"); err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Text("indoor-temp-now"); got != "21.5" {
		t.Fatalf("text = %q", got)
	}

	checks := []struct {
		name string
		err  error
	}{
		{"set unknown text", p.SetText("pressure-now", "1013")},
		{"clear unknown panel", p.ClearLoading("dashboard-wind-card")},
		{"attach unknown canvas", func() error { _, err := p.AttachChart("wind-chart", ChartConfig{}); return err }()},
		{"read unknown text", func() error { _, err := p.Text("pressure-now"); return err }()},
		{"read unknown panel", func() error { _, err := p.Panel("nope"); return err }()},
	}
	for _, c := range checks {
		if !errors.Is(c.err, ErrNoElement) {
			t.Errorf("%s: err = %v, want ErrNoElement", c.name, c.err)
		}
	}
	if _, err := p.Text("pressure-now"); err == nil {
		t.Fatalf("SetText must not create elements")
	}
}

func TestPage_ClearLoading(t *testing.T) {
	p := NewPage(testLayout())
	if err := p.ClearLoading("dashboard-light-card"); err != nil {
		t.Fatal(err)
	}
	panel, _ := p.Panel("dashboard-light-card")
	if panel.Loading() {
		t.Fatalf("panel still loading: %+v", panel)
	}
	other, _ := p.Panel("dashboard-indoor-temp-card")
	if !other.Loading() {
		t.Fatalf("other panels must be untouched")
	}
}

func TestChart_UpdateReplacesDataset(t *testing.T) {
	p := NewPage(testLayout())
	if c, _ := p.Chart("indoor-temp-chart"); c != nil {
		t.Fatalf("canvas should start without a chart")
	}
	c, err := p.AttachChart("indoor-temp-chart", ChartConfig{Type: "line", SuggestedMin: 0, SuggestedMax: 40})
	if err != nil {
		t.Fatal(err)
	}
	c.Update([]string{"9:00", "9:05"}, []float64{20, 21})
	labels := []string{"9:10"}
	c.Update(labels, []float64{22})
	labels[0] = "mutated"

	gotL, gotV := c.Data()
	if len(gotL) != 1 || gotL[0] != "9:10" || gotV[0] != 22 {
		t.Fatalf("dataset = %v %v", gotL, gotV)
	}
	if c.Draws() != 2 {
		t.Fatalf("draws = %d", c.Draws())
	}
	if same, _ := p.Chart("indoor-temp-chart"); same != c {
		t.Fatalf("page does not hold the attached chart")
	}
}

func TestPage_Render(t *testing.T) {
	p := NewPage(testLayout())
	p.SetProgress(50)
	_ = p.SetText("indoor-temp-now", "21.5")
	_ = p.ClearLoading("dashboard-indoor-temp-card")
	c, _ := p.AttachChart("indoor-temp-chart", ChartConfig{Type: "line"})
	c.Update([]string{"0:00", "1:00"}, []float64{5, 7})

	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"[" + strings.Repeat("#", 20) + strings.Repeat(".", 20) + "]  50%",
		"Temperature",
		"21.5",
		"▁█ 0:00..1:00 [5, 7]",
		"dashboard-light-card",
		"(loading)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render lacks %q:\n%s", want, out)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline(nil, nil); got != "(no data)" {
		t.Fatalf("empty = %q", got)
	}
	if got := sparkline([]string{"a", "b"}, []float64{3, 3}); !strings.HasPrefix(got, "▁▁ ") {
		t.Fatalf("flat series = %q", got)
	}
}
