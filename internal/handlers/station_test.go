package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"solarweather/internal/metrics"
	"solarweather/internal/service"
)

const uploadPath = "/weatherstation/updateweatherstation.php"

func TestStationUpload(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"stored", nil, http.StatusOK, "success"},
		{"malformed", fmt.Errorf("%w: tempf", service.ErrBadUpload), http.StatusBadRequest, "malformed"},
		{"wrong password", service.ErrStationRejected, http.StatusUnauthorized, "rejected"},
		{"too fast", service.ErrRateLimited, http.StatusTooManyRequests, "rate"},
		{"storage failure", errors.New("locked"), http.StatusInternalServerError, "failed to store upload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &mockStation{id: 7, err: tc.err}
			r := newTestRouter(&service.Service{Station: st})

			w := httptest.NewRecorder()
			target := uploadPath + "?ID=KSTATION1&PASSWORD=pw&dateutc=2024-07-17+02%3A00%3A00&tempf=57.7&action=updateraw"
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tc.wantBody) {
				t.Fatalf("body %q lacks %q", w.Body.String(), tc.wantBody)
			}
			if st.calls != 1 {
				t.Fatalf("Ingest called %d times", st.calls)
			}
			if st.lastQuery.Get("dateutc") != "2024-07-17 02:00:00" || st.lastQuery.Get("tempf") != "57.7" {
				t.Fatalf("query not forwarded: %v", st.lastQuery)
			}
		})
	}
}

func TestStationUpload_PlainTextAck(t *testing.T) {
	r := newTestRouter(&service.Service{Station: &mockStation{id: 1}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, uploadPath+"?tempf=50", nil))

	if w.Body.String() != "success" {
		t.Fatalf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestStationUpload_CountsOutcomes(t *testing.T) {
	m := metrics.New()
	st := &mockStation{}
	r := NewHandler(&service.Service{Station: st}, nil, m).InitRoutes()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, uploadPath, nil))
	st.err = service.ErrRateLimited
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, uploadPath, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	for _, line := range []string{
		`solarweather_station_uploads_total{result="ok"} 1`,
		`solarweather_station_uploads_total{result="error"} 1`,
	} {
		if !strings.Contains(w.Body.String(), line) {
			t.Errorf("metrics output lacks %q", line)
		}
	}
}
