// Package dashboard keeps a dashboard page in sync with the server: it
// fetches snapshots, writes formatted fields, redraws trend charts and
// clears each panel's loading state.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"solarweather/internal/logger"
	"solarweather/internal/models"
	"solarweather/internal/view"
)

// ErrStaleResponse is returned by a reload whose response arrived after a
// later reload had already been applied.
var ErrStaleResponse = errors.New("stale snapshot discarded")

// Refresher calls back on every refresh cycle.
type Refresher interface {
	Setup(onRefresh func())
}

// ChartSeries is a chart dataset rebuilt in full on every refresh.
type ChartSeries struct {
	Labels []string
	Values []float64
}

// FormatTrend turns trend points into H:MM labels in loc and values,
// negated when invert is set.
func FormatTrend(points []models.TrendPoint, invert bool, loc *time.Location) ChartSeries {
	s := ChartSeries{
		Labels: make([]string, 0, len(points)),
		Values: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		t := time.Unix(int64(p[0]), 0).In(loc)
		s.Labels = append(s.Labels, fmt.Sprintf("%d:%02d", t.Hour(), t.Minute()))
		v := p[1]
		if invert {
			v = -v
		}
		s.Values = append(s.Values, v)
	}
	return s
}

// Updater repaints one dashboard page from snapshots fetched from a Source.
type Updater struct {
	def  Definition
	src  Source
	page *view.Page
	loc  *time.Location
	log  *logger.Logger

	issued atomic.Uint64

	mu      sync.Mutex
	applied uint64
	charts  map[string]*view.Chart
}

// NewUpdater binds def to a page built from def.Layout(). A nil loc uses
// the local zone.
func NewUpdater(def Definition, src Source, page *view.Page, loc *time.Location, log *logger.Logger) *Updater {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Updater{def: def, src: src, page: page, loc: loc, log: log, charts: map[string]*view.Chart{}}
}

// Init attaches the charts, registers a reload with r and fetches once.
// Reloads triggered by r run concurrently; sequencing discards any
// response that is overtaken by a newer one.
func (u *Updater) Init(ctx context.Context, r Refresher) error {
	if err := u.attachCharts(); err != nil {
		return err
	}
	r.Setup(func() {
		go func() { _ = u.Reload(ctx) }()
	})
	return u.Reload(ctx)
}

// InitHistory attaches the charts, fetches the day of initial and then
// reloads for every date received until ctx is done or dates is closed.
func (u *Updater) InitHistory(ctx context.Context, dates <-chan time.Time, initial time.Time) error {
	if err := u.attachCharts(); err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-dates:
				if !ok {
					return
				}
				_ = u.ReloadAt(ctx, d.Unix())
			}
		}
	}()
	return u.ReloadAt(ctx, initial.Unix())
}

func (u *Updater) attachCharts() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, p := range u.def.Panels {
		for _, spec := range p.Charts {
			c, err := u.page.AttachChart(spec.CanvasID, spec.Config())
			if err != nil {
				return err
			}
			u.charts[spec.CanvasID] = c
		}
	}
	return nil
}

// Reload fetches the current snapshot and repaints.
func (u *Updater) Reload(ctx context.Context) error {
	return u.reload(ctx, u.def.Query)
}

// ReloadAt fetches the snapshot of the day containing ts (epoch seconds)
// and repaints. It only differs from Reload for history dashboards.
func (u *Updater) ReloadAt(ctx context.Context, ts int64) error {
	q := u.def.Query
	if q.History {
		q.Timestamp = ts
	}
	return u.reload(ctx, q)
}

func (u *Updater) reload(ctx context.Context, q Query) error {
	seq := u.issued.Add(1)
	snap, err := u.src.Snapshot(ctx, q)
	if err != nil {
		u.log.Errorw("dashboard_fetch_failed", "dashboard", u.def.Name, "seq", seq, "err", err)
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if seq < u.applied {
		u.log.Infow("dashboard_stale_response", "dashboard", u.def.Name, "seq", seq, "applied", u.applied)
		return fmt.Errorf("%w: request %d, already applied %d", ErrStaleResponse, seq, u.applied)
	}
	u.applied = seq
	if err := u.apply(snap); err != nil {
		u.log.Errorw("dashboard_apply_failed", "dashboard", u.def.Name, "err", err)
		return err
	}
	return nil
}

// apply paints every panel. A panel stays loading if any of its elements
// is missing from the page.
func (u *Updater) apply(snap models.Snapshot) error {
	for _, p := range u.def.Panels {
		for _, f := range p.Fields {
			if err := u.page.SetText(f.ElementID, f.Format(f.Value(snap))); err != nil {
				return err
			}
		}
		for _, spec := range p.Charts {
			c, ok := u.charts[spec.CanvasID]
			if !ok {
				return fmt.Errorf("%w: chart %q not attached", view.ErrNoElement, spec.CanvasID)
			}
			series := FormatTrend(snap[spec.Metric].DailyTrend, spec.Invert, u.loc)
			c.Update(series.Labels, series.Values)
		}
		if err := u.page.ClearLoading(p.ID); err != nil {
			return err
		}
	}
	return nil
}
