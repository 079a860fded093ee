package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/pkg/apperror"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "segredo-de-teste"

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var body utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func tokenFor(t *testing.T, id uint64) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, time.Hour, id, models.RoleOwner)
	require.NoError(t, err)
	return tok
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "role": c.GetString(ctxRole)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := authRouter()
	tok := tokenFor(t, 7)

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"bearer", "Bearer " + tok, "", http.StatusOK},
		{"lowercase scheme", "bearer " + tok, "", http.StatusOK},
		{"query fallback", "", "?token=" + tok, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok, "", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := perform(r, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want != http.StatusOK {
				assert.False(t, decode(t, rec).Success)
			}
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	tok, err := utils.GenerateToken(secret, -time.Minute, 7, models.RoleOwner)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, perform(authRouter(), req).Code)
}

type resolverFunc func(ctx context.Context, userID uint64, header string) (policy.Actor, error)

func (f resolverFunc) ResolveActor(ctx context.Context, userID uint64, header string) (policy.Actor, error) {
	return f(ctx, userID, header)
}

func TestActingScope(t *testing.T) {
	var gotHeader string
	resolver := resolverFunc(func(_ context.Context, userID uint64, header string) (policy.Actor, error) {
		gotHeader = header
		if userID == 404 {
			return policy.Actor{}, apperror.Unauthorized("usuário não encontrado")
		}
		if header == "x" {
			return policy.Actor{}, apperror.Validation("cabeçalho X-Clinic-ID inválido")
		}
		return policy.Actor{UserID: userID, Role: models.RoleEmployee, SubRole: models.SubRoleDoctor}, nil
	})

	r := gin.New()
	r.Use(AuthMiddleware(secret), ActingScope(resolver))
	r.GET("/records", RequirePermission(policy.PermClinicalRecord), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": Actor(c).UserID})
	})
	r.GET("/financial", RequirePermission(policy.PermFinancial), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 7))
	req.Header.Set(ClinicHeader, "2")
	rec := perform(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", gotHeader)
	assert.JSONEq(t, `{"user":7}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/financial", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 7))
	assert.Equal(t, http.StatusForbidden, perform(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 7))
	req.Header.Set(ClinicHeader, "x")
	assert.Equal(t, http.StatusBadRequest, perform(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 404))
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)
}

func TestActor_DefaultsToEmptyScope(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	a := Actor(c)
	assert.Equal(t, policy.Deny(), policy.ReadScope(a, policy.ResourcePatients))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	defer limiter.Stop()

	r := gin.New()
	r.Use(RateLimitMiddleware(limiter, zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, perform(r, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, perform(r, req).Code, "buckets are per IP")
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	defer limiter.Stop()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.GetLimiter("a")
	now = now.Add(2 * time.Minute)
	limiter.GetLimiter("b")
	now = now.Add(2 * time.Minute)
	limiter.cleanup()

	assert.Equal(t, 1, limiter.visitors())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ctxRequestID)) })

	rec := perform(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Body.String(), 36)
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", perform(r, req).Body.String())
}

func TestLoggerAndRecovery(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/fail", func(c *gin.Context) { utils.ErrorResponse(c, apperror.Internal("falha", assert.AnError)) })

	rec := perform(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "erro interno do servidor", decode(t, rec).Message)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "kaboom")

	logs.Reset()
	perform(r, httptest.NewRequest(http.MethodGet, "/fail", nil))
	line := logs.String()
	assert.True(t, strings.Contains(line, `"level":"error"`), line)
	assert.Contains(t, line, `"path":"/fail"`)
	assert.Contains(t, line, `"status":500`)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/patients/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, httptest.NewRequest(http.MethodGet, "/patients/1", nil))
	perform(r, httptest.NewRequest(http.MethodGet, "/patients/2", nil))
	perform(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			counts[labels["endpoint"]+" "+labels["status_code"]] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"/patients/:id 200": 2, "unmatched 404": 1}, counts)
}
