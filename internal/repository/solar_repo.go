package repository

import (
	"context"
	"fmt"

	"solarweather/internal/models"

	"github.com/jmoiron/sqlx"
)

type SolarSQL struct {
	metricTable
}

func NewSolarSQL(db *sqlx.DB) *SolarSQL {
	return &SolarSQL{metricTable{db: db, table: "solar_data", isMetric: models.IsSolarMetric}}
}

var _ SolarRepo = (*SolarSQL)(nil)

const insertSolarSQL = `
	INSERT INTO solar_data (
		grid_power_usage_real, grid_power_factor, grid_power_apparent, grid_power_reactive,
		grid_ac_voltage, grid_ac_current, inverter_ac_frequency, inverter_ac_current,
		inverter_ac_voltage, inverter_ac_power, inverter_dc_current, inverter_dc_voltage,
		power_consumption, time_stamp, time_year, time_month, time_day
	) VALUES (
		:grid_power_usage_real, :grid_power_factor, :grid_power_apparent, :grid_power_reactive,
		:grid_ac_voltage, :grid_ac_current, :inverter_ac_frequency, :inverter_ac_current,
		:inverter_ac_voltage, :inverter_ac_power, :inverter_dc_current, :inverter_dc_voltage,
		:power_consumption, :time_stamp, :time_year, :time_month, :time_day
	) RETURNING id`

func (r *SolarSQL) Insert(ctx context.Context, reading models.SolarReading) (int64, error) {
	id, err := insertReturningID(ctx, r.db, insertSolarSQL, reading)
	if err != nil {
		return 0, fmt.Errorf("insert solar reading: %w", err)
	}
	return id, nil
}
