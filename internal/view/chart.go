package view

import "sync"

// Chart colors shared by every dashboard chart.
const (
	ChartBackground = "#c68200"
	ChartBorder     = "#FF8C00"
	AxisTickColor   = "rgb(255, 255, 255)"
	AxisGridColor   = "rgb(255, 255, 255, 0.5)"
)

// ChartConfig is the fixed visual configuration of a chart.
type ChartConfig struct {
	Type            string // "line" or "bar"
	BackgroundColor string
	BorderColor     string
	TickColor       string
	GridColor       string
	SuggestedMin    float64
	SuggestedMax    float64
}

// Chart holds one dataset that is replaced wholesale on every update.
type Chart struct {
	Config ChartConfig

	mu     sync.RWMutex
	labels []string
	values []float64
	draws  int
}

// Update replaces the dataset and redraws.
func (c *Chart) Update(labels []string, values []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = append([]string(nil), labels...)
	c.values = append([]float64(nil), values...)
	c.draws++
}

// Data returns a copy of the current dataset.
func (c *Chart) Data() ([]string, []float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.labels...), append([]float64(nil), c.values...)
}

// Draws counts how many times the chart was redrawn.
func (c *Chart) Draws() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draws
}
