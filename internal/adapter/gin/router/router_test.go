package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"user-account-service/internal/adapter/db/postgres"
	"user-account-service/internal/adapter/gin/handler"
	"user-account-service/internal/adapter/mail"
	"user-account-service/internal/usecase/user"
	"user-account-service/pkg/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type recordingSender struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *recordingSender) last(t *testing.T) mail.Message {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.msgs)
	return s.msgs[len(s.msgs)-1]
}

type testServer struct {
	router     *gin.Engine
	tokens     token.Helper
	sender     *recordingSender
	dispatcher *mail.Dispatcher
	db         *gorm.DB
}

func setupServer(t testing.TB) *testServer {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.Migrate(context.Background(), db))

	tokens, err := token.NewHelper(testSecret, time.Hour, "user-account-service")
	require.NoError(t, err)

	sender := &recordingSender{}
	dispatcher := mail.NewDispatcher(sender, time.Second, log)
	t.Cleanup(dispatcher.Wait)

	uc := user.New(postgres.NewUserRepoPG(db, log), log, user.WithPasswordCost(bcrypt.MinCost))
	h := handler.NewUserHandler(uc, tokens, mail.NewComposer("http"), dispatcher, log)

	r := SetupRouter(Deps{
		UserHandler: h,
		Tokens:      tokens,
		Registry:    prometheus.NewRegistry(),
		HealthChecks: map[string]HealthCheck{
			"database": sqlDB.PingContext,
		},
		ServiceName: "user-account-service",
		Log:         log,
	})

	return &testServer{router: r, tokens: tokens, sender: sender, dispatcher: dispatcher, db: db}
}

func (s *testServer) call(t testing.TB, method, path string, body any, bearer string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Host = "accounts.test"
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

var verifyLink = regexp.MustCompile(`href='http://accounts\.test(/api/v1/users/verifyEmail/[^']+)'`)

func TestAccountLifecycle(t *testing.T) {
	s := setupServer(t)

	// signup
	code, body := s.call(t, http.MethodPost, "/api/v1/users", map[string]string{
		"firstName": "Grace",
		"lastName":  "Hopper",
		"email":     "Grace@Example.com",
		"password":  "cobol-rules",
	}, "")
	require.Equal(t, http.StatusCreated, code, body)
	payload := body["payload"].(map[string]any)
	id := int64(payload["id"].(float64))
	assert.Equal(t, "grace@example.com", payload["email"])
	assert.NotContains(t, payload, "password")

	s.dispatcher.Wait()
	msg := s.sender.last(t)
	assert.Equal(t, "grace@example.com", msg.RecipientEmail)
	m := verifyLink.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, msg.Body)
	verifyPath := m[1]

	// duplicate signup does not reveal the account
	code, body = s.call(t, http.MethodPost, "/api/v1/users", map[string]string{
		"firstName": "Grace", "lastName": "Hopper", "email": "grace@example.com", "password": "x",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "database error", body["message"])

	// signin before verification
	code, body = s.call(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email": "grace@example.com", "password": "cobol-rules",
	}, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["payload"].(map[string]any)["isVerified"])

	// a token for the right id but another email must not verify
	forged, err := s.tokens.Generate(token.Claims{ID: id, Email: "mallory@example.com"})
	require.NoError(t, err)
	code, _ = s.call(t, http.MethodGet, "/api/v1/users/verifyEmail/"+forged, nil, "")
	assert.Equal(t, http.StatusBadRequest, code)

	var verified bool
	require.NoError(t, s.db.Table("users").Select("is_verified").Where("id = ?", id).Scan(&verified).Error)
	assert.False(t, verified)

	// verify twice
	for i := 0; i < 2; i++ {
		code, body = s.call(t, http.MethodGet, verifyPath, nil, "")
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, "Your account has been verified", body["message"])
	}

	// signin after verification
	code, body = s.call(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email": "grace@example.com", "password": "cobol-rules",
	}, "")
	require.Equal(t, http.StatusOK, code)
	payload = body["payload"].(map[string]any)
	assert.Equal(t, true, payload["isVerified"])
	assert.Equal(t, "user", payload["role"])
	sessionToken := payload["token"].(string)

	// wrong password
	code, body = s.call(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email": "grace@example.com", "password": "fortran",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", body["message"])

	// retrieve
	code, body = s.call(t, http.MethodGet, "/api/v1/users/grace@example.com", nil, sessionToken)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Grace", body["payload"].(map[string]any)["firstName"])

	// update
	code, body = s.call(t, http.MethodPut, "/api/v1/users/grace@example.com", map[string]string{
		"gender":     "Female",
		"birthDate":  "1906-12-09",
		"department": "Navy",
	}, sessionToken)
	require.Equal(t, http.StatusCreated, code, body)
	payload = body["payload"].(map[string]any)
	assert.Equal(t, "female", payload["gender"])
	assert.Equal(t, "1906-12-09", payload["birthDate"])
	assert.Equal(t, "Navy", payload["department"])
	assert.Equal(t, "Grace", payload["firstName"])
	assert.NotContains(t, payload, "password")

	// invalid update
	code, _ = s.call(t, http.MethodPut, "/api/v1/users/grace@example.com", map[string]string{"gender": "robot"}, sessionToken)
	assert.Equal(t, http.StatusBadRequest, code)

	// another user's profile
	code, body = s.call(t, http.MethodGet, "/api/v1/users/ada@example.com", nil, sessionToken)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "You are not allowed to see this profile", body["message"])

	code, _ = s.call(t, http.MethodGet, "/api/v1/users/grace@example.com", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestVerifyEmail_ExpiredOrGarbageToken(t *testing.T) {
	s := setupServer(t)

	code, body := s.call(t, http.MethodGet, "/api/v1/users/verifyEmail/garbage", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid or expired verification token", body["message"])
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupServer(t)

	code, body := s.call(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["checks"].(map[string]any)["database"])

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestHealth_Unavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(Deps{
		UserHandler: &handler.UserHandler{},
		HealthChecks: map[string]HealthCheck{
			"redis": func(context.Context) error { return context.DeadlineExceeded },
		},
		Log: zaptest.NewLogger(t),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"unavailable"`)
}

func TestSwaggerDocument(t *testing.T) {
	s := setupServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/users.swagger.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Contains(t, doc["paths"], "/users/verifyEmail/{token}")
}
