package models

import "time"

// WeatherReading is one upload from the weather station, stored in metric units.
type WeatherReading struct {
	ID               int64     `db:"id" json:"id"`
	IndoorTemp       float64   `db:"indoor_temp" json:"indoor_temp"`             // °C
	OutdoorTemp      float64   `db:"outdoor_temp" json:"outdoor_temp"`           // °C
	IndoorFeelsTemp  float64   `db:"indoor_feels_temp" json:"indoor_feels_temp"` // °C
	OutdoorFeelsTemp float64   `db:"outdoor_feels_temp" json:"outdoor_feels_temp"`
	IndoorDewTemp    float64   `db:"indoor_dew_temp" json:"indoor_dew_temp"`
	OutdoorDewTemp   float64   `db:"outdoor_dew_temp" json:"outdoor_dew_temp"`
	DewPoint         float64   `db:"dew_point" json:"dew_point"`
	WindChill        float64   `db:"wind_chill" json:"wind_chill"`
	IndoorHumidity   float64   `db:"indoor_humidity" json:"indoor_humidity"` // %
	OutdoorHumidity  float64   `db:"outdoor_humidity" json:"outdoor_humidity"`
	WindSpeed        float64   `db:"wind_speed" json:"wind_speed"` // km/h
	WindGust         float64   `db:"wind_gust" json:"wind_gust"`
	WindDirection    float64   `db:"wind_direction" json:"wind_direction"` // degrees
	AbsolutePressure float64   `db:"absolute_pressure" json:"absolute_pressure"`
	Pressure         float64   `db:"pressure" json:"pressure"` // hPa
	Rain             float64   `db:"rain" json:"rain"`         // cm
	DailyRain        float64   `db:"daily_rain" json:"daily_rain"`
	WeeklyRain       float64   `db:"weekly_rain" json:"weekly_rain"`
	MonthlyRain      float64   `db:"monthly_rain" json:"monthly_rain"`
	SolarRadiation   float64   `db:"solar_radiation" json:"solar_radiation"` // W/m²
	UVIndex          int       `db:"uv_index" json:"uv_index"`
	DateUTC          time.Time `db:"date_utc" json:"date_utc"`
	TimeStamp        int64     `db:"time_stamp" json:"time_stamp"`
	TimeYear         int       `db:"time_year" json:"time_year"`
	TimeMonth        int       `db:"time_month" json:"time_month"`
	TimeDay          int       `db:"time_day" json:"time_day"`
	SoftwareType     string    `db:"software_type" json:"software_type"`
	Action           string    `db:"action" json:"action"`
	RealTime         int       `db:"real_time" json:"real_time"`
	RadioFreq        int       `db:"radio_freq" json:"radio_freq"`
}

// WeatherMetrics lists the numeric weather columns that carry statistics.
var WeatherMetrics = []string{
	"indoor_temp",
	"outdoor_temp",
	"indoor_feels_temp",
	"outdoor_feels_temp",
	"indoor_dew_temp",
	"outdoor_dew_temp",
	"dew_point",
	"wind_chill",
	"indoor_humidity",
	"outdoor_humidity",
	"wind_speed",
	"wind_gust",
	"wind_direction",
	"absolute_pressure",
	"pressure",
	"rain",
	"daily_rain",
	"weekly_rain",
	"monthly_rain",
	"solar_radiation",
	"uv_index",
}

// Values maps every statistic-bearing metric to its value.
func (r WeatherReading) Values() map[string]float64 {
	return map[string]float64{
		"indoor_temp":        r.IndoorTemp,
		"outdoor_temp":       r.OutdoorTemp,
		"indoor_feels_temp":  r.IndoorFeelsTemp,
		"outdoor_feels_temp": r.OutdoorFeelsTemp,
		"indoor_dew_temp":    r.IndoorDewTemp,
		"outdoor_dew_temp":   r.OutdoorDewTemp,
		"dew_point":          r.DewPoint,
		"wind_chill":         r.WindChill,
		"indoor_humidity":    r.IndoorHumidity,
		"outdoor_humidity":   r.OutdoorHumidity,
		"wind_speed":         r.WindSpeed,
		"wind_gust":          r.WindGust,
		"wind_direction":     r.WindDirection,
		"absolute_pressure":  r.AbsolutePressure,
		"pressure":           r.Pressure,
		"rain":               r.Rain,
		"daily_rain":         r.DailyRain,
		"weekly_rain":        r.WeeklyRain,
		"monthly_rain":       r.MonthlyRain,
		"solar_radiation":    r.SolarRadiation,
		"uv_index":           float64(r.UVIndex),
	}
}
