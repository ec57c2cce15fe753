package dashboard

import (
	"strconv"

	"solarweather/internal/models"
	"solarweather/internal/view"
)

// Field writes one value of the snapshot into a text element.
type Field struct {
	ElementID string
	Value     func(models.Snapshot) float64
	Format    func(float64) string
}

// ChartSpec binds a canvas to the daily trend of a metric.
type ChartSpec struct {
	CanvasID string
	Metric   string
	Type     string // "line" or "bar"
	Invert   bool
	// Suggested y-axis bounds. Nil means the default of -5000 or 5000.
	SuggestedMin *float64
	SuggestedMax *float64
}

// Config returns the fixed visual configuration for the chart.
func (c ChartSpec) Config() view.ChartConfig {
	cfg := view.ChartConfig{
		Type:            c.Type,
		BackgroundColor: view.ChartBackground,
		BorderColor:     view.ChartBorder,
		TickColor:       view.AxisTickColor,
		GridColor:       view.AxisGridColor,
		SuggestedMin:    -5000,
		SuggestedMax:    5000,
	}
	if c.SuggestedMin != nil {
		cfg.SuggestedMin = *c.SuggestedMin
	}
	if c.SuggestedMax != nil {
		cfg.SuggestedMax = *c.SuggestedMax
	}
	return cfg
}

// Panel is one card of a dashboard.
type Panel struct {
	ID     string
	Title  string
	Fields []Field
	Charts []ChartSpec
}

// Definition describes a whole dashboard declaratively.
type Definition struct {
	Name string
	// Query is the snapshot request for a reload; history dashboards get
	// the selected timestamp filled in.
	Query  Query
	Panels []Panel
}

// Layout is the page template matching the definition.
func (d Definition) Layout() view.Layout {
	var l view.Layout
	for _, p := range d.Panels {
		pl := view.PanelLayout{ID: p.ID, Title: p.Title}
		for _, f := range p.Fields {
			pl.Texts = append(pl.Texts, f.ElementID)
		}
		for _, c := range p.Charts {
			pl.Canvases = append(pl.Canvases, c.CanvasID)
		}
		l.Panels = append(l.Panels, pl)
	}
	return l
}

// Value selectors. Absent values read as 0.

func latest(metric string) func(models.Snapshot) float64 {
	return func(s models.Snapshot) float64 { return deref(s[metric].Latest) }
}

func dailyMin(metric string) func(models.Snapshot) float64 {
	return func(s models.Snapshot) float64 { return s[metric].DailyMin }
}

func dailyMax(metric string) func(models.Snapshot) float64 {
	return func(s models.Snapshot) float64 { return s[metric].DailyMax }
}

func day(metric string) func(models.Snapshot) float64 {
	return func(s models.Snapshot) float64 { return deref(s[metric].Day) }
}

func week(metric string) func(models.Snapshot) float64 {
	return func(s models.Snapshot) float64 { return deref(s[metric].Week) }
}

func month(metric string) func(models.Snapshot) float64 {
	return func(s models.Snapshot) float64 { return deref(s[metric].Month) }
}

// kilo converts W or Wh to kW or kWh.
func kilo(f func(models.Snapshot) float64) func(models.Snapshot) float64 {
	return func(s models.Snapshot) float64 { return f(s) / 1000 }
}

// surplus is the day's generation minus consumption in kWh.
func surplus(s models.Snapshot) float64 {
	return day("inverter_ac_power")(s)/1000 - day("power_consumption")(s)/1000
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Formatters.

func fixed(precision int) func(float64) string {
	return func(v float64) string { return strconv.FormatFloat(v, 'f', precision, 64) }
}

func plain(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func bound(v float64) *float64 { return &v }

// Weather is the indoor/outdoor temperature dashboard.
var Weather = Definition{
	Name:  "weather",
	Query: Query{},
	Panels: []Panel{{
		ID:    "dashboard-indoor-temp-card",
		Title: "Temperature (°C)",
		Fields: []Field{
			{"indoor-temp-now", latest("indoor_temp"), fixed(1)},
			{"indoor-temp-now-feels-like", latest("indoor_feels_temp"), fixed(1)},
			{"indoor-temp-day-min", dailyMin("indoor_temp"), fixed(1)},
			{"indoor-temp-day-max", dailyMax("indoor_temp"), fixed(1)},
			{"outdoor-temp-now", latest("outdoor_temp"), fixed(1)},
			{"outdoor-temp-now-feels-like", latest("outdoor_feels_temp"), fixed(1)},
			{"outdoor-temp-day-min", dailyMin("outdoor_temp"), fixed(1)},
			{"outdoor-temp-day-max", dailyMax("outdoor_temp"), fixed(1)},
		},
		Charts: []ChartSpec{{
			CanvasID:     "indoor-temp-chart",
			Metric:       "indoor_temp",
			Type:         "line",
			SuggestedMin: bound(0),
			SuggestedMax: bound(40),
		}},
	}},
}

var dailyPowerPanel = Panel{
	ID:    "dashboard-daily-power-card",
	Title: "Energy (kWh)",
	Fields: []Field{
		{"generated-day", kilo(day("inverter_ac_power")), fixed(3)},
		{"generated-week", kilo(week("inverter_ac_power")), fixed(1)},
		{"generated-month", kilo(month("inverter_ac_power")), fixed(1)},
		{"used-day", kilo(day("power_consumption")), fixed(3)},
		{"used-week", kilo(week("power_consumption")), fixed(1)},
		{"used-month", kilo(month("power_consumption")), fixed(1)},
	},
}

var energyBalancePanel = Panel{
	ID:     "dashboard-energy-balance-card",
	Title:  "Energy balance (kWh)",
	Fields: []Field{{"energy-balance-surplus", surplus, fixed(3)}},
	Charts: []ChartSpec{{
		CanvasID:     "energy-balance-chart",
		Metric:       "grid_power_usage_real",
		Type:         "bar",
		Invert:       true,
		SuggestedMin: bound(-5000),
		SuggestedMax: bound(5000),
	}},
}

var solarGenerationPanel = Panel{
	ID:     "dashboard-solar-generation-card",
	Title:  "Solar generation (kWh)",
	Fields: []Field{{"solar-generation-total", kilo(day("inverter_ac_power")), fixed(3)}},
	Charts: []ChartSpec{{
		CanvasID:     "solar-generation-chart",
		Metric:       "inverter_ac_power",
		Type:         "line",
		SuggestedMin: bound(0),
		SuggestedMax: bound(5000),
	}},
}

// Solar is the live solar dashboard.
var Solar = Definition{
	Name:  "solar",
	Query: Query{Dashboard: "solar"},
	Panels: []Panel{
		{
			ID:    "dashboard-current-usage-card",
			Title: "Current usage (kW)",
			Fields: []Field{
				{"current-usage-now", kilo(latest("power_consumption")), fixed(3)},
				{"current-usage-from-solar", kilo(latest("inverter_ac_power")), fixed(3)},
				{"current-usage-from-grid", kilo(latest("grid_power_usage_real")), fixed(3)},
			},
		},
		dailyPowerPanel,
		{
			ID:    "dashboard-light-card",
			Title: "Light",
			Fields: []Field{
				{"uv-index", latest("uv_index"), plain},
				{"light-intensity", latest("solar_radiation"), fixed(2)},
			},
		},
		energyBalancePanel,
		solarGenerationPanel,
	},
}

// SolarHistory shows a past day of the solar dashboard, selected by date.
var SolarHistory = Definition{
	Name:  "solar-history",
	Query: Query{Dashboard: "solar", History: true},
	Panels: []Panel{
		{
			ID:    "dashboard-peak-usage-card",
			Title: "Peak usage (kW)",
			Fields: []Field{
				{"peak-usage-now", kilo(dailyMax("power_consumption")), fixed(3)},
				{"peak-usage-from-solar", kilo(dailyMax("inverter_ac_power")), fixed(3)},
				{"peak-usage-from-grid", kilo(dailyMax("grid_power_usage_real")), fixed(3)},
			},
		},
		dailyPowerPanel,
		energyBalancePanel,
		solarGenerationPanel,
	},
}

// ByName looks up a dashboard definition by its name.
func ByName(name string) (Definition, bool) {
	for _, d := range []Definition{Weather, Solar, SolarHistory} {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
