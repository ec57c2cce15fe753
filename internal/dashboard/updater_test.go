package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solarweather/internal/models"
	"solarweather/internal/view"
)

// fakeSource answers from a queue of replies. A reply with a gate blocks
// until the gate is closed.
type fakeSource struct {
	mu      sync.Mutex
	replies []reply
	queries []Query
	called  chan Query
}

type reply struct {
	snap models.Snapshot
	err  error
	gate chan struct{}
}

func newFakeSource(replies ...reply) *fakeSource {
	return &fakeSource{replies: replies, called: make(chan Query, 16)}
}

func (f *fakeSource) Snapshot(ctx context.Context, q Query) (models.Snapshot, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	var r reply
	if len(f.replies) > 0 {
		r, f.replies = f.replies[0], f.replies[1:]
	}
	f.mu.Unlock()

	f.called <- q
	if r.gate != nil {
		<-r.gate
	}
	return r.snap, r.err
}

func (f *fakeSource) waitCall(t *testing.T) Query {
	t.Helper()
	select {
	case q := <-f.called:
		return q
	case <-time.After(time.Second):
		t.Fatal("no snapshot request")
		return Query{}
	}
}

type fakeRefresher struct{ cb func() }

func (r *fakeRefresher) Setup(cb func()) { r.cb = cb }

func ptr(v float64) *float64 { return &v }

func text(t *testing.T, p *view.Page, id string) string {
	t.Helper()
	s, err := p.Text(id)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFormatTrend(t *testing.T) {
	points := []models.TrendPoint{{0, 5}, {3600, 7}}

	cases := []struct {
		name       string
		loc        *time.Location
		invert     bool
		wantLabels []string
		wantValues []float64
	}{
		{"utc", time.UTC, false, []string{"0:00", "1:00"}, []float64{5, 7}},
		{"utc inverted", time.UTC, true, []string{"0:00", "1:00"}, []float64{-5, -7}},
		{"plus ten", time.FixedZone("AEST", 10*3600), false, []string{"10:00", "11:00"}, []float64{5, 7}},
		{"half hour zone", time.FixedZone("ACST", 9*3600+1800), false, []string{"9:30", "10:30"}, []float64{5, 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := FormatTrend(points, tc.invert, tc.loc)
			if len(s.Labels) != 2 || s.Labels[0] != tc.wantLabels[0] || s.Labels[1] != tc.wantLabels[1] {
				t.Fatalf("labels = %v, want %v", s.Labels, tc.wantLabels)
			}
			if s.Values[0] != tc.wantValues[0] || s.Values[1] != tc.wantValues[1] {
				t.Fatalf("values = %v, want %v", s.Values, tc.wantValues)
			}
		})
	}

	if s := FormatTrend(nil, false, time.UTC); s.Labels == nil || len(s.Values) != 0 {
		t.Fatalf("empty trend should give an empty, non-nil series: %+v", s)
	}
}

func TestUpdater_WeatherMissingLatestRendersZero(t *testing.T) {
	page := view.NewPage(Weather.Layout())
	src := newFakeSource(reply{snap: models.Snapshot{
		"indoor_temp":  {DailyMin: 18.3, DailyMax: 22},
		"outdoor_temp": {Latest: ptr(14.26), DailyTrend: []models.TrendPoint{{0, 5}, {3600, 7}}},
	}})
	u := NewUpdater(Weather, src, page, time.UTC, nil)

	if err := u.Init(context.Background(), &fakeRefresher{}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	want := map[string]string{
		"indoor-temp-now":             "0.0",
		"indoor-temp-now-feels-like":  "0.0",
		"indoor-temp-day-min":         "18.3",
		"indoor-temp-day-max":         "22.0",
		"outdoor-temp-now":            "14.3",
		"outdoor-temp-now-feels-like": "0.0",
	}
	for id, w := range want {
		if got := text(t, page, id); got != w {
			t.Errorf("%s = %q, want %q", id, got, w)
		}
	}
	panel, _ := page.Panel("dashboard-indoor-temp-card")
	if panel.Loading() {
		t.Fatalf("panel still loading")
	}
	if q := src.waitCall(t); q != (Query{}) {
		t.Fatalf("weather query = %+v", q)
	}
}

func TestUpdater_IndoorFeelsLikeUsesItsOwnMetric(t *testing.T) {
	page := view.NewPage(Weather.Layout())
	src := newFakeSource(reply{snap: models.Snapshot{
		"indoor_temp":       {Latest: ptr(21)},
		"indoor_feels_temp": {Latest: ptr(19.5)},
	}})
	if err := NewUpdater(Weather, src, page, time.UTC, nil).Init(context.Background(), &fakeRefresher{}); err != nil {
		t.Fatal(err)
	}
	if got := text(t, page, "indoor-temp-now-feels-like"); got != "19.5" {
		t.Fatalf("feels like = %q", got)
	}
}

func TestUpdater_Solar(t *testing.T) {
	page := view.NewPage(Solar.Layout())
	src := newFakeSource(reply{snap: models.Snapshot{
		"power_consumption": {Latest: ptr(1500), Day: ptr(8250), Week: ptr(40000), Month: ptr(160000)},
		"inverter_ac_power": {
			Latest: ptr(2250), Day: ptr(12500), Week: ptr(54321), Month: ptr(200040),
			DailyTrend: []models.TrendPoint{{0, 100}, {3600, 2500}},
		},
		"grid_power_usage_real": {
			Latest:     ptr(-750),
			DailyTrend: []models.TrendPoint{{0, 300}, {1800, -1200}},
		},
		"uv_index":        {Latest: ptr(3)},
		"solar_radiation": {Latest: ptr(512.25)},
	}})
	u := NewUpdater(Solar, src, page, time.UTC, nil)
	if err := u.Init(context.Background(), &fakeRefresher{}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	want := map[string]string{
		"current-usage-now":        "1.500",
		"current-usage-from-solar": "2.250",
		"current-usage-from-grid":  "-0.750",
		"generated-day":            "12.500",
		"generated-week":           "54.3",
		"generated-month":          "200.0",
		"used-day":                 "8.250",
		"used-week":                "40.0",
		"used-month":               "160.0",
		"uv-index":                 "3",
		"light-intensity":          "512.25",
		"energy-balance-surplus":   "4.250",
		"solar-generation-total":   "12.500",
	}
	for id, w := range want {
		if got := text(t, page, id); got != w {
			t.Errorf("%s = %q, want %q", id, got, w)
		}
	}

	balance, _ := page.Chart("energy-balance-chart")
	labels, values := balance.Data()
	if len(labels) != 2 || labels[1] != "0:30" || values[0] != -300 || values[1] != 1200 {
		t.Fatalf("energy balance = %v %v", labels, values)
	}
	if balance.Config.Type != "bar" || balance.Config.SuggestedMin != -5000 || balance.Config.BackgroundColor != "#c68200" {
		t.Fatalf("energy balance config = %+v", balance.Config)
	}
	gen, _ := page.Chart("solar-generation-chart")
	if _, v := gen.Data(); len(v) != 2 || v[1] != 2500 {
		t.Fatalf("generation values = %v", v)
	}
	if gen.Config.SuggestedMin != 0 || gen.Config.SuggestedMax != 5000 || gen.Config.BorderColor != "#FF8C00" {
		t.Fatalf("generation config = %+v", gen.Config)
	}

	for _, p := range Solar.Panels {
		if panel, _ := page.Panel(p.ID); panel.Loading() {
			t.Errorf("panel %s still loading", p.ID)
		}
	}
}

func TestUpdater_FailedFetchLeavesPanelsLoading(t *testing.T) {
	page := view.NewPage(Solar.Layout())
	boom := errors.New("connection refused")
	u := NewUpdater(Solar, newFakeSource(reply{err: boom}), page, time.UTC, nil)

	if err := u.Init(context.Background(), &fakeRefresher{}); !errors.Is(err, boom) {
		t.Fatalf("Init err = %v", err)
	}
	for _, p := range Solar.Panels {
		if panel, _ := page.Panel(p.ID); !panel.Loading() {
			t.Errorf("panel %s left loading state after a failed fetch", p.ID)
		}
	}
	if got := text(t, page, "current-usage-now"); got != "" {
		t.Fatalf("text written after failed fetch: %q", got)
	}
}

func TestUpdater_MissingElement(t *testing.T) {
	layout := Weather.Layout()
	layout.Panels[0].Texts = layout.Panels[0].Texts[1:] // drop indoor-temp-now
	page := view.NewPage(layout)
	u := NewUpdater(Weather, newFakeSource(reply{snap: models.Snapshot{}}), page, time.UTC, nil)

	if err := u.Init(context.Background(), &fakeRefresher{}); !errors.Is(err, view.ErrNoElement) {
		t.Fatalf("Init err = %v, want ErrNoElement", err)
	}
	if panel, _ := page.Panel("dashboard-indoor-temp-card"); !panel.Loading() {
		t.Fatalf("panel should stay loading")
	}
}

func TestUpdater_StaleResponseDiscarded(t *testing.T) {
	page := view.NewPage(Weather.Layout())
	gate := make(chan struct{})
	src := newFakeSource(
		reply{snap: models.Snapshot{"outdoor_temp": {Latest: ptr(10)}}, gate: gate},
		reply{snap: models.Snapshot{"outdoor_temp": {Latest: ptr(20)}}},
	)
	u := NewUpdater(Weather, src, page, time.UTC, nil)
	if err := u.attachCharts(); err != nil {
		t.Fatal(err)
	}

	slow := make(chan error, 1)
	go func() { slow <- u.Reload(context.Background()) }()
	src.waitCall(t) // first request is in flight

	if err := u.Reload(context.Background()); err != nil {
		t.Fatalf("second reload: %v", err)
	}
	close(gate)

	select {
	case err := <-slow:
		if !errors.Is(err, ErrStaleResponse) {
			t.Fatalf("slow reload err = %v, want ErrStaleResponse", err)
		}
	case <-time.After(time.Second):
		t.Fatal("slow reload never finished")
	}
	if got := text(t, page, "outdoor-temp-now"); got != "20.0" {
		t.Fatalf("outdoor-temp-now = %q, newer response must win", got)
	}
}

func TestUpdater_RefreshCallbackReloads(t *testing.T) {
	page := view.NewPage(Weather.Layout())
	src := newFakeSource(
		reply{snap: models.Snapshot{"outdoor_temp": {Latest: ptr(10)}}},
		reply{snap: models.Snapshot{"outdoor_temp": {Latest: ptr(11)}}},
	)
	r := &fakeRefresher{}
	u := NewUpdater(Weather, src, page, time.UTC, nil)
	if err := u.Init(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	src.waitCall(t)
	if r.cb == nil {
		t.Fatal("reload not registered with the refresher")
	}

	r.cb()
	src.waitCall(t)
	deadline := time.Now().Add(time.Second)
	for text(t, page, "outdoor-temp-now") != "11.0" {
		if time.Now().After(deadline) {
			t.Fatal("refresh callback did not repaint")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestUpdater_History(t *testing.T) {
	page := view.NewPage(SolarHistory.Layout())
	src := newFakeSource(
		reply{snap: models.Snapshot{"power_consumption": {DailyMax: 4200}}},
		reply{snap: models.Snapshot{"power_consumption": {DailyMax: 3100}}},
	)
	u := NewUpdater(SolarHistory, src, page, time.UTC, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dates := make(chan time.Time)
	initial := time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC)
	if err := u.InitHistory(ctx, dates, initial); err != nil {
		t.Fatal(err)
	}
	q := src.waitCall(t)
	if q != (Query{Dashboard: "solar", History: true, Timestamp: initial.Unix()}) {
		t.Fatalf("initial query = %+v", q)
	}
	if got := text(t, page, "peak-usage-now"); got != "4.200" {
		t.Fatalf("peak usage = %q", got)
	}

	next := initial.AddDate(0, 0, 1)
	dates <- next
	if q := src.waitCall(t); q.Timestamp != next.Unix() {
		t.Fatalf("date change query = %+v", q)
	}
	deadline := time.Now().Add(time.Second)
	for text(t, page, "peak-usage-now") != "3.100" {
		if time.Now().After(deadline) {
			t.Fatal("date change did not repaint")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDefinitions(t *testing.T) {
	for _, name := range []string{"weather", "solar", "solar-history"} {
		def, ok := ByName(name)
		if !ok {
			t.Fatalf("dashboard %q not found", name)
		}
		seen := map[string]bool{}
		for _, p := range def.Layout().Panels {
			for _, id := range append(append([]string{p.ID}, p.Texts...), p.Canvases...) {
				if seen[id] {
					t.Errorf("%s: duplicate element id %q", name, id)
				}
				seen[id] = true
			}
		}
	}
	if _, ok := ByName("garden"); ok {
		t.Fatal("unknown dashboard found")
	}
	if cfg := (ChartSpec{Type: "line"}).Config(); cfg.SuggestedMin != -5000 || cfg.SuggestedMax != 5000 {
		t.Fatalf("default bounds = %v..%v", cfg.SuggestedMin, cfg.SuggestedMax)
	}
}
