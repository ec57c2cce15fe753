package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"solarweather/internal/models"

	"github.com/jmoiron/sqlx"
)

// ErrUnknownMetric is returned when a metric is not a column of the table.
var ErrUnknownMetric = errors.New("unknown metric")

// metricTable implements MetricReader for one readings table. Column names
// cannot be bound as parameters, so every metric is checked against the
// table's allow-list before it is formatted into a query.
type metricTable struct {
	db       *sqlx.DB
	table    string
	isMetric func(string) bool
}

type pointRow struct {
	TS    int64   `db:"ts"`
	Value float64 `db:"value"`
}

func (t *metricTable) column(metric string) (string, error) {
	if !t.isMetric(metric) {
		return "", fmt.Errorf("%w: %q in %s", ErrUnknownMetric, metric, t.table)
	}
	return metric, nil
}

func (t *metricTable) Extreme(ctx context.Context, metric string, agg Aggregate, from, to int64) (float64, bool, error) {
	col, err := t.column(metric)
	if err != nil {
		return 0, false, err
	}
	if agg != Max && agg != Min {
		return 0, false, fmt.Errorf("unsupported aggregate %q", agg)
	}
	q := t.db.Rebind(fmt.Sprintf(
		"SELECT %s(%s) FROM %s WHERE time_stamp >= ? AND time_stamp < ?", agg, col, t.table))

	var v sql.NullFloat64
	if err := t.db.GetContext(ctx, &v, q, from, to); err != nil {
		return 0, false, fmt.Errorf("%s %s: %w", agg, metric, err)
	}
	return v.Float64, v.Valid, nil
}

func (t *metricTable) Latest(ctx context.Context, metric string, before int64) (float64, bool, error) {
	col, err := t.column(metric)
	if err != nil {
		return 0, false, err
	}
	q := t.db.Rebind(fmt.Sprintf(
		"SELECT %s FROM %s WHERE time_stamp < ? ORDER BY time_stamp DESC LIMIT 1", col, t.table))

	var v float64
	if err := t.db.GetContext(ctx, &v, q, before); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("latest %s: %w", metric, err)
	}
	return v, true, nil
}

func (t *metricTable) Trend(ctx context.Context, metric string, from, to, bucket int64) ([]models.TrendPoint, error) {
	col, err := t.column(metric)
	if err != nil {
		return nil, err
	}
	if bucket <= 0 {
		return nil, fmt.Errorf("trend bucket must be positive, got %d", bucket)
	}
	q := t.db.Rebind(fmt.Sprintf(`
		SELECT (time_stamp / ?) * ? AS ts, AVG(%s) AS value
		FROM %s
		WHERE time_stamp >= ? AND time_stamp < ?
		GROUP BY ts
		ORDER BY ts`, col, t.table))

	var rows []pointRow
	if err := t.db.SelectContext(ctx, &rows, q, bucket, bucket, from, to); err != nil {
		return nil, fmt.Errorf("trend %s: %w", metric, err)
	}
	return toPoints(rows), nil
}

func (t *metricTable) Series(ctx context.Context, metric string, from, to int64) ([]models.TrendPoint, error) {
	col, err := t.column(metric)
	if err != nil {
		return nil, err
	}
	q := t.db.Rebind(fmt.Sprintf(`
		SELECT time_stamp AS ts, %s AS value
		FROM %s
		WHERE time_stamp >= ? AND time_stamp < ?
		ORDER BY time_stamp`, col, t.table))

	var rows []pointRow
	if err := t.db.SelectContext(ctx, &rows, q, from, to); err != nil {
		return nil, fmt.Errorf("series %s: %w", metric, err)
	}
	return toPoints(rows), nil
}

func toPoints(rows []pointRow) []models.TrendPoint {
	out := make([]models.TrendPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.TrendPoint{float64(r.TS), r.Value})
	}
	return out
}

// insertReturningID runs a named INSERT ... RETURNING id.
func insertReturningID(ctx context.Context, db *sqlx.DB, query string, arg any) (int64, error) {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return 0, fmt.Errorf("bind insert: %w", err)
	}
	var id int64
	if err := db.QueryRowxContext(ctx, db.Rebind(q), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
