package models

// SolarReading is one poll of the inverter and grid meter. Power values are W.
type SolarReading struct {
	ID                  int64   `db:"id" json:"id"`
	GridPowerUsageReal  float64 `db:"grid_power_usage_real" json:"grid_power_usage_real"`
	GridPowerFactor     float64 `db:"grid_power_factor" json:"grid_power_factor"`
	GridPowerApparent   float64 `db:"grid_power_apparent" json:"grid_power_apparent"`
	GridPowerReactive   float64 `db:"grid_power_reactive" json:"grid_power_reactive"`
	GridACVoltage       float64 `db:"grid_ac_voltage" json:"grid_ac_voltage"`
	GridACCurrent       float64 `db:"grid_ac_current" json:"grid_ac_current"`
	InverterACFrequency float64 `db:"inverter_ac_frequency" json:"inverter_ac_frequency"`
	InverterACCurrent   float64 `db:"inverter_ac_current" json:"inverter_ac_current"`
	InverterACVoltage   float64 `db:"inverter_ac_voltage" json:"inverter_ac_voltage"`
	InverterACPower     float64 `db:"inverter_ac_power" json:"inverter_ac_power"`
	InverterDCCurrent   float64 `db:"inverter_dc_current" json:"inverter_dc_current"`
	InverterDCVoltage   float64 `db:"inverter_dc_voltage" json:"inverter_dc_voltage"`
	PowerConsumption    float64 `db:"power_consumption" json:"power_consumption"`
	TimeStamp           int64   `db:"time_stamp" json:"time_stamp"`
	TimeYear            int     `db:"time_year" json:"time_year"`
	TimeMonth           int     `db:"time_month" json:"time_month"`
	TimeDay             int     `db:"time_day" json:"time_day"`
}

// SolarMetrics lists the solar power columns shown on the solar dashboards.
var SolarMetrics = []string{
	"grid_power_usage_real",
	"inverter_ac_power",
	"power_consumption",
}

// solarColumns lists every numeric solar column.
var solarColumns = []string{
	"grid_power_usage_real",
	"grid_power_factor",
	"grid_power_apparent",
	"grid_power_reactive",
	"grid_ac_voltage",
	"grid_ac_current",
	"inverter_ac_frequency",
	"inverter_ac_current",
	"inverter_ac_voltage",
	"inverter_ac_power",
	"inverter_dc_current",
	"inverter_dc_voltage",
	"power_consumption",
}

// IsWeatherMetric reports whether name is a weather column with statistics.
func IsWeatherMetric(name string) bool {
	return contains(WeatherMetrics, name)
}

// IsSolarMetric reports whether name is a numeric solar column.
func IsSolarMetric(name string) bool {
	return contains(solarColumns, name)
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

// Values maps the dashboard power metrics to their value.
func (r SolarReading) Values() map[string]float64 {
	return map[string]float64{
		"grid_power_usage_real": r.GridPowerUsageReal,
		"inverter_ac_power":     r.InverterACPower,
		"power_consumption":     r.PowerConsumption,
	}
}
