package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"library-backend/internal/models"
	"library-backend/internal/repository"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memCredentialRepo struct {
	mu    sync.Mutex
	byVal map[string]*models.RefreshToken
	next  int64
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{byVal: make(map[string]*models.RefreshToken)}
}

func (m *memCredentialRepo) Create(token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byVal[token.Token]; ok {
		return repository.ErrDuplicate
	}
	m.next++
	token.ID = m.next
	cp := *token
	m.byVal[token.Token] = &cp
	return nil
}

func (m *memCredentialRepo) Consume(tokenValue string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.byVal[tokenValue]
	if !ok || rt.Consumed {
		return nil, repository.ErrNotFound
	}
	rt.Consumed = true
	rt.UsedAt = time.Now()
	cp := *rt
	return &cp, nil
}

func (m *memCredentialRepo) GetByValue(tokenValue string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.byVal[tokenValue]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

type authFixture struct {
	tokens service.TokenAuthority
	router *gin.Engine
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := service.NewTokenAuthority(newMemCredentialRepo(),
		[]byte("access-secret"), []byte("refresh-secret"), 30*time.Minute, zap.NewNop())

	router := gin.New()
	protected := router.Group("/api")
	protected.Use(Authenticate(tokens, zap.NewNop()))
	protected.Use(RotateRefresh(tokens, zap.NewNop()))
	protected.GET("/whoami", func(c *gin.Context) {
		claims := CurrentClaims(c)
		pair := RotatedPair(c)
		c.JSON(http.StatusOK, gin.H{
			"id":            claims.UserID,
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
		})
	})

	return &authFixture{tokens: tokens, router: router}
}

func (f *authFixture) request(t *testing.T, accessToken, refreshToken string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if refreshToken != "" {
		req.Header.Set(RefreshHeader, refreshToken)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func testSubject() *models.User {
	return &models.User{ID: 7, Name: "Jane Librarian", Email: "jane@example.com", RoleID: 1}
}

func TestMissingAuthorizationHeader(t *testing.T) {
	f := newAuthFixture(t)

	w := f.request(t, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Token abcdef")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidAccessToken(t *testing.T) {
	f := newAuthFixture(t)

	w := f.request(t, "not-a-jwt", "whatever")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMissingRefreshHeader(t *testing.T) {
	f := newAuthFixture(t)

	access, err := f.tokens.Issue(testSubject())
	require.NoError(t, err)

	w := f.request(t, access, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRequestRotatesTokens(t *testing.T) {
	f := newAuthFixture(t)
	subject := testSubject()

	access, err := f.tokens.Issue(subject)
	require.NoError(t, err)
	refresh, err := f.tokens.CreateRefresh(subject)
	require.NoError(t, err)

	w := f.request(t, access, refresh)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":7`)
	assert.Contains(t, w.Body.String(), "access_token")
	assert.Contains(t, w.Body.String(), "refresh_token")
}

func TestReplayedRefreshTokenIsRejected(t *testing.T) {
	f := newAuthFixture(t)
	subject := testSubject()

	access, err := f.tokens.Issue(subject)
	require.NoError(t, err)
	refresh, err := f.tokens.CreateRefresh(subject)
	require.NoError(t, err)

	first := f.request(t, access, refresh)
	require.Equal(t, http.StatusOK, first.Code)

	// The same refresh value was consumed by the first request.
	second := f.request(t, access, refresh)
	assert.Equal(t, http.StatusForbidden, second.Code)
}

func TestForgedRefreshTokenIsRejected(t *testing.T) {
	f := newAuthFixture(t)
	subject := testSubject()

	forger := service.NewTokenAuthority(newMemCredentialRepo(),
		[]byte("access-secret"), []byte("attacker-secret"), 30*time.Minute, zap.NewNop())

	access, err := f.tokens.Issue(subject)
	require.NoError(t, err)
	forgedRefresh, err := forger.CreateRefresh(subject)
	require.NoError(t, err)

	w := f.request(t, access, forgedRefresh)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
