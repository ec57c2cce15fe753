package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"solarweather/internal/models"
	"solarweather/internal/service"
)

func TestSnapshotHandler(t *testing.T) {
	snap := models.Snapshot{
		"indoor_temp":  {DailyMin: 18.5, DailyMax: 23, DailyTrend: []models.TrendPoint{}},
		"outdoor_temp": {Latest: ptr(14.25), DailyMin: 9, DailyMax: 17.5, DailyTrend: []models.TrendPoint{{0, 5}, {3600, 7}}},
	}

	cases := []struct {
		name      string
		url       string
		dashErr   error
		wantCode  int
		wantQuery service.SnapshotQuery
	}{
		{
			name:     "weather by default",
			url:      "/dataajax/",
			wantCode: http.StatusOK,
		},
		{
			name:      "solar history",
			url:       "/dataajax/?dashboard=solar&history=1&timestamp=1721174400",
			wantCode:  http.StatusOK,
			wantQuery: service.SnapshotQuery{Dashboard: "solar", History: true, Timestamp: 1721174400},
		},
		{
			name:     "timestamp not a number",
			url:      "/dataajax/?history=1&timestamp=yesterday",
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "service rejects timestamp",
			url:       "/dataajax/?history=1",
			dashErr:   fmt.Errorf("%w: 0", service.ErrInvalidTimestamp),
			wantCode:  http.StatusBadRequest,
			wantQuery: service.SnapshotQuery{History: true},
		},
		{
			name:      "unknown dashboard",
			url:       "/dataajax/?dashboard=garden",
			dashErr:   fmt.Errorf("%w %q", service.ErrUnknownDashboard, "garden"),
			wantCode:  http.StatusBadRequest,
			wantQuery: service.SnapshotQuery{Dashboard: "garden"},
		},
		{
			name:     "storage failure",
			url:      "/dataajax/",
			dashErr:  errors.New("disk on fire"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dash := &mockDashboard{snap: snap, err: tc.dashErr}
			r := newTestRouter(&service.Service{Dashboard: dash})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantCode == http.StatusBadRequest && tc.dashErr == nil {
				if len(dash.queries) != 0 {
					t.Fatalf("service must not be called for a malformed request")
				}
				return
			}
			if q := dash.lastQuery(); q != tc.wantQuery {
				t.Fatalf("query = %+v, want %+v", q, tc.wantQuery)
			}
			if tc.wantCode != http.StatusOK {
				return
			}

			var got models.Snapshot
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got["indoor_temp"].Latest != nil {
				t.Fatalf("absent latest must encode as null")
			}
			out := got["outdoor_temp"]
			if out.Latest == nil || *out.Latest != 14.25 || len(out.DailyTrend) != 2 || out.DailyTrend[1] != (models.TrendPoint{3600, 7}) {
				t.Fatalf("unexpected outdoor_temp: %+v", out)
			}
		})
	}
}
