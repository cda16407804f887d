package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/worker"
)

type testServer struct {
	app    *fiber.App
	issuer *auth.Issuer
	db     *persistence.SQLite
	repo   repository.CredentialRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := persistence.NewSQLite(ctx, filepath.Join(t.TempDir(), "users.db"), logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, persistence.RunSQLiteMigrations(ctx, db.DB, logger))

	repo := repository.NewSQLiteCredentialRepository(db.DB)
	require.NoError(t, service.SeedCredential(ctx, repo,
		config.StoreConfig{SeedUsername: "user1", SeedPassword: "pass1"},
		config.AuthConfig{PasswordScheme: config.SchemePlaintext}, logger))

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	pool := worker.NewPool(4, 64)
	t.Cleanup(pool.Close)

	issuer, err := auth.NewIssuer("test-secret")
	require.NoError(t, err)

	gateway := auth.NewGateway(repo, pool, metrics, logger)
	authService := service.NewAuthService(service.AuthDependencies{
		Credentials: gateway,
		Verifier:    auth.PlaintextVerifier{},
		Issuer:      issuer,
		Metrics:     metrics,
		Logger:      logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("auth-service", "test", map[string]handlers.Pinger{"credential_store": gateway.Guard(db)}),
		Login:   handlers.NewLoginHandler(authService),
		Metrics: handlers.NewMetricsHandler(reg),
	})

	return &testServer{app: app, issuer: issuer, db: db, repo: repo}
}

func (s *testServer) login(t *testing.T, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestLoginScenario(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.login(t, `{"username":"user1","password":"pass1"}`)
	require.Equal(t, nethttp.StatusOK, status)

	var token string
	require.NoError(t, json.Unmarshal([]byte(body), &token))
	claims, err := srv.issuer.Parse(token, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "user1", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	wrongStatus, wrongBody := srv.login(t, `{"username":"user1","password":"wrong"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, wrongStatus)
	assert.Equal(t, "Invalid credentials", wrongBody)

	ghostStatus, ghostBody := srv.login(t, `{"username":"ghost","password":"x"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, ghostStatus)
	assert.Equal(t, wrongBody, ghostBody)
}

func TestLoginRejectsMalformedPayload(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{`not json`, `{"username":"user1"}`, `{}`} {
		status, _ := srv.login(t, body)
		assert.Equal(t, nethttp.StatusBadRequest, status, body)
	}

	req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(`username=user1&password=pass1`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestLoginStoreFailureIsInternalError(t *testing.T) {
	srv := newTestServer(t)
	srv.db.Close()

	status, body := srv.login(t, `{"username":"user1","password":"pass1"}`)
	assert.Equal(t, nethttp.StatusInternalServerError, status)
	assert.Equal(t, "Database error", body)
}

func TestConcurrentLoginsResolveIndependently(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	const n = 20
	for i := 0; i < n; i++ {
		_, err := srv.repo.EnsureCredential(ctx, domain.CredentialRecord{
			Username: fmt.Sprintf("user-%d", i),
			Secret:   fmt.Sprintf("secret-%d", i),
		})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	subjects := make([]string, n)
	statuses := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"username":"user-%d","password":"secret-%d"}`, i, i)
			req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := srv.app.Test(req, -1)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
			var token string
			if json.NewDecoder(resp.Body).Decode(&token) != nil {
				return
			}
			if claims, err := srv.issuer.Parse(token, time.Now()); err == nil {
				subjects[i] = claims.Subject
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.Equal(t, nethttp.StatusOK, statuses[i])
		assert.Equal(t, fmt.Sprintf("user-%d", i), subjects[i])
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	srv.login(t, `{"username":"user1","password":"pass1"}`)

	resp, err := srv.app.Test(httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, err = srv.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `auth_logins_total{outcome="success"} 1`)

	srv.db.Close()
	resp, err = srv.app.Test(httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownRouteIsPlainText(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.app.Test(httptest.NewRequest(nethttp.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, fiber.MIMETextPlainCharsetUTF8, resp.Header.Get(fiber.HeaderContentType))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Cannot GET /nope", string(raw))
}

func TestMetricLabelsSurviveContextReuse(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 3; i++ {
		status, _ := srv.login(t, `{"username":"user1","password":"wrong"}`)
		require.Equal(t, nethttp.StatusUnauthorized, status)

		resp, err := srv.app.Test(httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}
	for i := 0; i < 5; i++ {
		resp, err := srv.app.Test(httptest.NewRequest(nethttp.MethodGet, fmt.Sprintf("/missing-%d", i), nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	}

	resp, err := srv.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(raw))

	exposition := string(raw)
	assert.Contains(t, exposition, `auth_http_errors_total{code="INVALID_CREDENTIALS",method="POST",path="/login"} 3`)
	assert.Contains(t, exposition, `auth_http_requests_total{method="POST",path="/login",status="401"} 3`)
	assert.NotContains(t, exposition, "missing-")
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil)
	app.Get("/boom", func(c *fiber.Ctx) error { panic("unexpected") })

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Internal server error", string(raw))
}
