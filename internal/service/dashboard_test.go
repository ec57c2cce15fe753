package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"solarweather/internal/models"
)

func TestDashboardService_WeatherSnapshot(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, testLoc)
	f := newStatsFixture(now)
	f.weather.add("outdoor_temp", now.Unix()-600, 18)
	f.weather.add("outdoor_temp", now.Unix()-300, 22)

	snap, err := NewDashboardService(f.stats, 5*time.Minute).Snapshot(ctx, SnapshotQuery{})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap) != len(models.WeatherMetrics) {
		t.Fatalf("snapshot has %d metrics, want %d", len(snap), len(models.WeatherMetrics))
	}

	out := snap["outdoor_temp"]
	if out.Latest == nil || *out.Latest != 22 {
		t.Fatalf("latest = %v, want 22", out.Latest)
	}
	if out.DailyMin != 18 || out.DailyMax != 22 || out.YearlyMax != 22 {
		t.Fatalf("extremes wrong: %+v", out)
	}
	if len(out.DailyTrend) != 2 {
		t.Fatalf("trend = %v, want two buckets", out.DailyTrend)
	}
	if out.Day != nil {
		t.Fatalf("weather metrics carry no energy totals")
	}

	in := snap["indoor_temp"]
	if in.Latest != nil {
		t.Fatalf("indoor_temp has no readings, latest should be nil")
	}
	if in.DailyTrend == nil {
		t.Fatalf("trend should be an empty list, not null")
	}
}

func TestDashboardService_SolarSnapshot(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 7, 17, 12, 0, 0, 0, testLoc)
	f := newStatsFixture(now)
	f.solar.add("inverter_ac_power", now.Unix()-600, 3600)
	f.solar.add("inverter_ac_power", now.Unix()-300, 3600)
	f.weather.add("uv_index", now.Unix()-60, 7)

	snap, err := NewDashboardService(f.stats, time.Minute).Snapshot(ctx, SnapshotQuery{Dashboard: DashboardSolar})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	for _, m := range []string{"grid_power_usage_real", "inverter_ac_power", "power_consumption", "uv_index", "solar_radiation"} {
		if _, ok := snap[m]; !ok {
			t.Errorf("solar snapshot missing %s", m)
		}
	}
	if len(snap) != 5 {
		t.Errorf("solar snapshot has %d metrics, want 5", len(snap))
	}

	gen := snap["inverter_ac_power"]
	if gen.Day == nil || *gen.Day != 300 {
		t.Fatalf("day energy = %v, want 300 Wh", gen.Day)
	}
	if gen.Week == nil || gen.Month == nil {
		t.Fatalf("week/month energy missing")
	}
	if snap["uv_index"].Day != nil {
		t.Fatalf("uv_index must not carry energy totals")
	}
	if v := snap["uv_index"].Latest; v == nil || *v != 7 {
		t.Fatalf("uv_index latest = %v", v)
	}
}

func TestDashboardService_History(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 7, 17, 12, 0, 0, 0, testLoc)
	f := newStatsFixture(now)

	lastWeek := time.Date(2024, 7, 10, 15, 0, 0, 0, testLoc)
	f.solar.add("power_consumption", lastWeek.Unix(), 900)
	f.solar.add("power_consumption", lastWeek.Unix()+60, 1500)
	f.solar.add("power_consumption", now.Unix()-60, 400)
	// a cached live value must not leak into history
	_ = f.stats.SetLatest(ctx, "power_consumption", 400)

	svc := NewDashboardService(f.stats, time.Minute)
	snap, err := svc.Snapshot(ctx, SnapshotQuery{Dashboard: DashboardSolar, History: true, Timestamp: lastWeek.Unix()})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	pc := snap["power_consumption"]
	if pc.Latest == nil || *pc.Latest != 1500 {
		t.Fatalf("history latest = %v, want 1500", pc.Latest)
	}
	if pc.DailyMax != 1500 || pc.DailyMin != 900 {
		t.Fatalf("history extremes = %v/%v", pc.DailyMin, pc.DailyMax)
	}
}

func TestDashboardService_Errors(t *testing.T) {
	ctx := context.Background()
	f := newStatsFixture(time.Now())
	svc := NewDashboardService(f.stats, 0)

	if _, err := svc.Snapshot(ctx, SnapshotQuery{History: true}); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("missing timestamp: %v", err)
	}
	if _, err := svc.Snapshot(ctx, SnapshotQuery{History: true, Timestamp: -5}); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("negative timestamp: %v", err)
	}
	if _, err := svc.Snapshot(ctx, SnapshotQuery{Dashboard: "garden"}); !errors.Is(err, ErrUnknownDashboard) {
		t.Errorf("unknown dashboard should fail")
	}

	f.weather.err = errBoom
	if _, err := svc.Snapshot(ctx, SnapshotQuery{}); !errors.Is(err, errBoom) {
		t.Errorf("repository error should propagate, got %v", err)
	}
	if svc.trendInterval != defaultTrendInterval {
		t.Errorf("trend interval = %v, want default", svc.trendInterval)
	}
}
