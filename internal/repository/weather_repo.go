package repository

import (
	"context"
	"fmt"

	"solarweather/internal/models"

	"github.com/jmoiron/sqlx"
)

type WeatherSQL struct {
	metricTable
}

func NewWeatherSQL(db *sqlx.DB) *WeatherSQL {
	return &WeatherSQL{metricTable{db: db, table: "weather_data", isMetric: models.IsWeatherMetric}}
}

var _ WeatherRepo = (*WeatherSQL)(nil)

const insertWeatherSQL = `
	INSERT INTO weather_data (
		indoor_temp, outdoor_temp, indoor_feels_temp, outdoor_feels_temp,
		indoor_dew_temp, outdoor_dew_temp, dew_point, wind_chill,
		indoor_humidity, outdoor_humidity, wind_speed, wind_gust, wind_direction,
		absolute_pressure, pressure, rain, daily_rain, weekly_rain, monthly_rain,
		solar_radiation, uv_index, date_utc, time_stamp, time_year, time_month, time_day,
		software_type, action, real_time, radio_freq
	) VALUES (
		:indoor_temp, :outdoor_temp, :indoor_feels_temp, :outdoor_feels_temp,
		:indoor_dew_temp, :outdoor_dew_temp, :dew_point, :wind_chill,
		:indoor_humidity, :outdoor_humidity, :wind_speed, :wind_gust, :wind_direction,
		:absolute_pressure, :pressure, :rain, :daily_rain, :weekly_rain, :monthly_rain,
		:solar_radiation, :uv_index, :date_utc, :time_stamp, :time_year, :time_month, :time_day,
		:software_type, :action, :real_time, :radio_freq
	) RETURNING id`

// Insert stores a reading and returns its row ID. DateUTC is persisted in UTC.
func (r *WeatherSQL) Insert(ctx context.Context, reading models.WeatherReading) (int64, error) {
	reading.DateUTC = reading.DateUTC.UTC()
	id, err := insertReturningID(ctx, r.db, insertWeatherSQL, reading)
	if err != nil {
		return 0, fmt.Errorf("insert weather reading: %w", err)
	}
	return id, nil
}
