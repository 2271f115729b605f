package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pooja-supplies/internal/notifier/adapters"
	"pooja-supplies/internal/notifier/application"
	"pooja-supplies/pkg/auth"
	"pooja-supplies/pkg/db"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/middleware"
)

var testSecret = []byte("notifier-test-secret")

func newTestRouter(t *testing.T) (*gin.Engine, *adapters.GormTokenRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.New("test", "debug")

	conn, err := db.NewInMemory()
	require.NoError(t, err)
	repo := adapters.NewGormTokenRepository(conn)
	require.NoError(t, repo.Migrate())
	uc := application.NewNotifierUseCase(repo, adapters.NewExpoSender("http://127.0.0.1:0", time.Second), log)

	r := gin.New()
	r.Use(middleware.TraceID(), middleware.ErrorHandler(log))
	NewHTTPHandler(uc).RegisterRoutes(r.Group("/api/v1", auth.Middleware(testSecret)))
	return r, repo
}

func call(t *testing.T, r *gin.Engine, method, user string, admin bool, token string) int {
	t.Helper()
	body, err := json.Marshal(map[string]string{"token": token})
	require.NoError(t, err)
	bearer, err := auth.IssueToken(testSecret, user, admin, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, "/api/v1/push-tokens", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPushTokenRoutes(t *testing.T) {
	r, repo := newTestRouter(t)
	ctx := context.Background()

	assert.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "admin-1", true, "ExponentPushToken[tablet]"))
	assert.Equal(t, http.StatusBadRequest, call(t, r, http.MethodPost, "admin-1", true, "apns:1234"))

	admins, err := repo.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)

	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodDelete, "buyer-1", false, "ExponentPushToken[tablet]"))
	assert.Equal(t, http.StatusNoContent, call(t, r, http.MethodDelete, "admin-1", true, "ExponentPushToken[tablet]"))
}
