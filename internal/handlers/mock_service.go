package handlers

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"solarweather/internal/models"
	"solarweather/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockStation struct {
	id        int64
	err       error
	calls     int
	lastQuery url.Values
}

func (m *mockStation) Ingest(ctx context.Context, q url.Values) (int64, error) {
	m.calls++
	m.lastQuery = q
	return m.id, m.err
}

// mockDashboard is read from the websocket handler goroutine, hence the lock.
type mockDashboard struct {
	mu      sync.Mutex
	snap    models.Snapshot
	err     error
	queries []service.SnapshotQuery
}

func (m *mockDashboard) Snapshot(ctx context.Context, q service.SnapshotQuery) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	return m.snap, m.err
}

func (m *mockDashboard) lastQuery() service.SnapshotQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queries) == 0 {
		return service.SnapshotQuery{}
	}
	return m.queries[len(m.queries)-1]
}

type mockReadings struct {
	resp       []models.TrendPoint
	err        error
	lastFilter service.ReadingFilter
}

func (m *mockReadings) List(ctx context.Context, f service.ReadingFilter) ([]models.TrendPoint, error) {
	m.lastFilter = f
	return m.resp, m.err
}

type mockAdmin struct {
	rebuild    service.RebuildResult
	rebuildErr error
	backupErr  error
	rebuilds   int
	lastBackup string
}

func (m *mockAdmin) RebuildCache(ctx context.Context) (service.RebuildResult, error) {
	m.rebuilds++
	return m.rebuild, m.rebuildErr
}
func (m *mockAdmin) Backup(ctx context.Context, path string) error {
	m.lastBackup = path
	return m.backupErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request, token string) *http.Request {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}

func ptr(v float64) *float64 { return &v }
