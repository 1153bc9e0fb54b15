package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/view"
)

func newTestHandler(t *testing.T, repo Repository) (*Handler, *session.Store) {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	store := session.NewStore(time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, NewService(repo), templates, store, false), store
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", h.MountRoutes)
	return r
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo(&User{
		ID: 3, Name: "Budi", Email: "budi@example.com", Role: "teknisi",
		PasswordHash: hashOf(t, "rahasia123"),
	})
	h, store := newTestHandler(t, repo)
	router := newTestRouter(h)

	rec := postForm(router, "/auth/login", url.Values{
		"email":    {"budi@example.com"},
		"password": {"rahasia123"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, session.CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.NotEmpty(t, cookie.Value)

	sess, ok := store.Validate(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, int64(3), sess.UserID)
	assert.Equal(t, "teknisi", sess.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubRepo(&User{
		ID: 3, Email: "budi@example.com", PasswordHash: hashOf(t, "rahasia123"),
	})
	h, store := newTestHandler(t, repo)
	router := newTestRouter(h)

	rec := postForm(router, "/auth/login", url.Values{
		"email":    {"budi@example.com"},
		"password": {"salah"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email atau password tidak valid")
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 0, store.Len())
}

func TestLoginMissingFields(t *testing.T) {
	h, _ := newTestHandler(t, newStubRepo())
	router := newTestRouter(h)

	rec := postForm(router, "/auth/login", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email dan password wajib diisi")
}

func TestLogoutInvalidatesSession(t *testing.T) {
	h, store := newTestHandler(t, newStubRepo())
	router := newTestRouter(h)

	token, err := store.Create(3, "teknisi", "Budi", "budi@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

	_, ok := store.Validate(token)
	assert.False(t, ok)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestForgotPasswordNeverRevealsAccount(t *testing.T) {
	repo := newStubRepo(&User{ID: 3, Email: "budi@example.com"})
	h, _ := newTestHandler(t, repo)
	router := newTestRouter(h)

	known := postForm(router, "/auth/forgot-password", url.Values{"email": {"budi@example.com"}})
	unknown := postForm(router, "/auth/forgot-password", url.Values{"email": {"ghost@example.com"}})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Contains(t, known.Body.String(), "Jika email terdaftar")
	assert.Contains(t, unknown.Body.String(), "Jika email terdaftar")
}

func TestResetPasswordFlow(t *testing.T) {
	repo := newStubRepo(&User{ID: 3, Email: "budi@example.com", PasswordHash: hashOf(t, "lama12345")})
	h, _ := newTestHandler(t, repo)
	router := newTestRouter(h)

	token, err := h.service.IssueResetToken(httptest.NewRequest("GET", "/", nil).Context(), "budi@example.com")
	require.NoError(t, err)

	t.Run("mismatched confirmation", func(t *testing.T) {
		rec := postForm(router, "/auth/reset-password/"+token, url.Values{
			"password":         {"baru12345"},
			"confirm_password": {"lain12345"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		rec := postForm(router, "/auth/reset-password/"+token, url.Values{
			"password":         {"baru12345"},
			"confirm_password": {"baru12345"},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
		assert.NotEmpty(t, repo.passwords[3])
	})

	t.Run("token already consumed", func(t *testing.T) {
		rec := postForm(router, "/auth/reset-password/"+token, url.Values{
			"password":         {"baru12345"},
			"confirm_password": {"baru12345"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Tautan reset tidak valid")
	})
}
