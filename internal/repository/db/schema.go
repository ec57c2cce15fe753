package db

import "strings"

// weatherColumns is shared by both dialects; only the id column differs.
const weatherColumns = `
    indoor_temp REAL NOT NULL,
    outdoor_temp REAL NOT NULL,
    indoor_feels_temp REAL NOT NULL,
    outdoor_feels_temp REAL NOT NULL,
    indoor_dew_temp REAL NOT NULL,
    outdoor_dew_temp REAL NOT NULL,
    dew_point REAL NOT NULL,
    wind_chill REAL NOT NULL,
    indoor_humidity REAL NOT NULL,
    outdoor_humidity REAL NOT NULL,
    wind_speed REAL NOT NULL,
    wind_gust REAL NOT NULL,
    wind_direction REAL NOT NULL,
    absolute_pressure REAL NOT NULL,
    pressure REAL NOT NULL,
    rain REAL NOT NULL,
    daily_rain REAL NOT NULL,
    weekly_rain REAL NOT NULL,
    monthly_rain REAL NOT NULL,
    solar_radiation REAL NOT NULL,
    uv_index INTEGER NOT NULL,
    date_utc TIMESTAMP NOT NULL,
    time_stamp BIGINT NOT NULL,
    time_year INTEGER NOT NULL,
    time_month INTEGER NOT NULL,
    time_day INTEGER NOT NULL,
    software_type TEXT NOT NULL,
    action TEXT NOT NULL,
    real_time INTEGER NOT NULL,
    radio_freq INTEGER NOT NULL
`

const solarColumns = `
    grid_power_usage_real REAL NOT NULL,
    grid_power_factor REAL NOT NULL,
    grid_power_apparent REAL NOT NULL,
    grid_power_reactive REAL NOT NULL,
    grid_ac_voltage REAL NOT NULL,
    grid_ac_current REAL NOT NULL,
    inverter_ac_frequency REAL NOT NULL,
    inverter_ac_current REAL NOT NULL,
    inverter_ac_voltage REAL NOT NULL,
    inverter_ac_power REAL NOT NULL,
    inverter_dc_current REAL NOT NULL,
    inverter_dc_voltage REAL NOT NULL,
    power_consumption REAL NOT NULL,
    time_stamp BIGINT NOT NULL,
    time_year INTEGER NOT NULL,
    time_month INTEGER NOT NULL,
    time_day INTEGER NOT NULL
`

const indexes = `
CREATE INDEX IF NOT EXISTS weather_data_time_stamp_idx ON weather_data (time_stamp);
CREATE INDEX IF NOT EXISTS solar_data_time_stamp_idx ON solar_data (time_stamp);
`

func table(name, idColumn, columns string) string {
	return "CREATE TABLE IF NOT EXISTS " + name + " (\n    " + idColumn + "," + columns + ");"
}

func indexStatements() []string {
	return strings.Split(strings.TrimSpace(indexes), "\n")
}

var sqliteSchema = append([]string{
	table("weather_data", "id INTEGER PRIMARY KEY AUTOINCREMENT", weatherColumns),
	table("solar_data", "id INTEGER PRIMARY KEY AUTOINCREMENT", solarColumns),
	`CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);`,
}, indexStatements()...)

var postgresSchema = append([]string{
	table("weather_data", "id BIGSERIAL PRIMARY KEY", strings.ReplaceAll(weatherColumns, "REAL", "DOUBLE PRECISION")),
	table("solar_data", "id BIGSERIAL PRIMARY KEY", strings.ReplaceAll(solarColumns, "REAL", "DOUBLE PRECISION")),
	`CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);`,
}, indexStatements()...)
