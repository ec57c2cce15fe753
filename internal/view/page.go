// Package view models the dashboard page: a fixed set of text elements,
// panels and chart canvases registered up front from a Layout. Updaters
// only mutate registered elements; they cannot create new ones.
package view

import (
	"errors"
	"fmt"
	"sync"
)

var ErrNoElement = errors.New("no such element")

// Layout lists the element IDs a page template renders.
type Layout struct {
	Panels []PanelLayout
}

// PanelLayout is one card: its text elements and chart canvases.
type PanelLayout struct {
	ID       string
	Title    string
	Texts    []string
	Canvases []string
}

// Panel is a card with loading visuals. A fresh panel shows its spinner and
// overlay and has its content blurred until ClearLoading.
type Panel struct {
	ID             string
	Title          string
	SpinnerVisible bool
	OverlayVisible bool
	Blurred        bool

	texts    []string
	canvases []string
}

// Loading reports whether any loading visual is still shown.
func (p Panel) Loading() bool {
	return p.SpinnerVisible || p.OverlayVisible || p.Blurred
}

// Page holds the state of every registered element. It is safe for
// concurrent use.
type Page struct {
	mu       sync.RWMutex
	panels   []*Panel
	panelIDs map[string]*Panel
	texts    map[string]string
	charts   map[string]*Chart
	progress float64
}

// NewPage registers every element of layout in its loading state.
func NewPage(layout Layout) *Page {
	p := &Page{
		panelIDs: map[string]*Panel{},
		texts:    map[string]string{},
		charts:   map[string]*Chart{},
		progress: 100,
	}
	for _, pl := range layout.Panels {
		panel := &Panel{
			ID:             pl.ID,
			Title:          pl.Title,
			SpinnerVisible: true,
			OverlayVisible: true,
			Blurred:        true,
			texts:          append([]string(nil), pl.Texts...),
			canvases:       append([]string(nil), pl.Canvases...),
		}
		p.panels = append(p.panels, panel)
		p.panelIDs[pl.ID] = panel
		for _, id := range pl.Texts {
			p.texts[id] = ""
		}
		for _, id := range pl.Canvases {
			p.charts[id] = nil
		}
	}
	return p
}

func noElement(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNoElement, kind, id)
}

// SetText replaces the content of a text element.
func (p *Page) SetText(id, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.texts[id]; !ok {
		return noElement("text", id)
	}
	p.texts[id] = text
	return nil
}

// Text returns the content of a text element.
func (p *Page) Text(id string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.texts[id]
	if !ok {
		return "", noElement("text", id)
	}
	return t, nil
}

// ClearLoading hides the spinner and overlay of a panel and unblurs it.
func (p *Page) ClearLoading(panelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	panel, ok := p.panelIDs[panelID]
	if !ok {
		return noElement("panel", panelID)
	}
	panel.SpinnerVisible = false
	panel.OverlayVisible = false
	panel.Blurred = false
	return nil
}

// Panel returns a copy of the panel's current state.
func (p *Page) Panel(id string) (Panel, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	panel, ok := p.panelIDs[id]
	if !ok {
		return Panel{}, noElement("panel", id)
	}
	return *panel, nil
}

// AttachChart binds a chart with cfg to a canvas. Attaching again replaces
// the previous chart.
func (p *Page) AttachChart(canvasID string, cfg ChartConfig) (*Chart, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.charts[canvasID]; !ok {
		return nil, noElement("canvas", canvasID)
	}
	c := &Chart{Config: cfg}
	p.charts[canvasID] = c
	return c, nil
}

// Chart returns the chart bound to a canvas, or nil if none is attached yet.
func (p *Page) Chart(canvasID string) (*Chart, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.charts[canvasID]
	if !ok {
		return nil, noElement("canvas", canvasID)
	}
	return c, nil
}

// SetProgress moves the refresh progress bar.
func (p *Page) SetProgress(percent float64) {
	p.mu.Lock()
	p.progress = percent
	p.mu.Unlock()
}

// Progress reports the refresh progress bar position.
func (p *Page) Progress() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.progress
}
