package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/liftlog/liftlog/internal/authz"
	"github.com/liftlog/liftlog/internal/shared"
	"github.com/liftlog/liftlog/internal/view"
)

type stubRepo struct {
	users   map[int64]User
	hashes  map[int64]string
	nextID  int64
	deleted []int64
}

func newStubRepo(users ...User) *stubRepo {
	r := &stubRepo{users: make(map[int64]User), hashes: make(map[int64]string), nextID: 100}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubRepo) List(context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *stubRepo) Get(_ context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *stubRepo) Create(_ context.Context, u User, passwordHash string) (User, error) {
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	r.hashes[u.ID] = passwordHash
	return u, nil
}

func (r *stubRepo) Update(_ context.Context, id int64, u User, passwordHash string) error {
	u.ID = id
	r.users[id] = u
	if passwordHash != "" {
		r.hashes[id] = passwordHash
	}
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	delete(r.users, id)
	return nil
}

func newTestRouter(t *testing.T, repo Repository) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo), templates, shared.NewCSRFManager("test"))
	r := chi.NewRouter()
	r.Route("/users", h.MountRoutes)
	return r
}

func asPrincipal(r *http.Request, p *authz.Principal) *http.Request {
	return r.WithContext(authz.WithPrincipal(r.Context(), p))
}

func TestNonAdminRefused(t *testing.T) {
	router := newTestRouter(t, newStubRepo())

	for _, role := range []string{"teknisi", "supervisor"} {
		req := asPrincipal(httptest.NewRequest("GET", "/users", nil), &authz.Principal{ID: 2, Role: role})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
	}

	// No principal at all gets the same refusal.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/users", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateUser(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo)
	admin := &authz.Principal{ID: 1, Role: "admin"}

	form := url.Values{
		"name":     {"Budi"},
		"email":    {"budi@example.com"},
		"role":     {"teknisi"},
		"password": {"rahasia123"},
	}
	req := httptest.NewRequest("POST", "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asPrincipal(req, admin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, repo.users, 1)
	created := repo.users[101]
	assert.Equal(t, "Budi", created.Name)
	assert.Equal(t, "teknisi", created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[101]), []byte("rahasia123")))
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo)
	admin := &authz.Principal{ID: 1, Role: "admin"}

	tests := []struct {
		name string
		form url.Values
	}{
		{"short password", url.Values{"name": {"Budi"}, "role": {"teknisi"}, "password": {"pendek"}}},
		{"unknown role", url.Values{"name": {"Budi"}, "role": {"root"}, "password": {"rahasia123"}}},
		{"missing name", url.Values{"role": {"teknisi"}, "password": {"rahasia123"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/users", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req = asPrincipal(req, admin)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, repo.users)
		})
	}
}

func TestUpdateKeepsPasswordWhenBlank(t *testing.T) {
	repo := newStubRepo(User{ID: 7, Name: "Ani", Email: "ani@example.com", Role: "teknisi"})
	repo.hashes[7] = "original-hash"
	router := newTestRouter(t, repo)

	form := url.Values{
		"name":  {"Ani Baru"},
		"email": {"ani@example.com"},
		"role":  {"supervisor"},
	}
	req := httptest.NewRequest("POST", "/users/7", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asPrincipal(req, &authz.Principal{ID: 1, Role: "admin"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Ani Baru", repo.users[7].Name)
	assert.Equal(t, "supervisor", repo.users[7].Role)
	assert.Equal(t, "original-hash", repo.hashes[7])
}

func TestDeleteSelfRefused(t *testing.T) {
	repo := newStubRepo(User{ID: 1, Name: "Root", Role: "admin"})
	router := newTestRouter(t, repo)

	req := asPrincipal(httptest.NewRequest("POST", "/users/1/delete", nil), &authz.Principal{ID: 1, Role: "admin"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot delete own account")
	assert.Empty(t, repo.deleted)
}

func TestDeleteOtherUser(t *testing.T) {
	repo := newStubRepo(
		User{ID: 1, Name: "Root", Role: "admin"},
		User{ID: 7, Name: "Ani", Role: "teknisi"},
	)
	router := newTestRouter(t, repo)

	req := asPrincipal(httptest.NewRequest("POST", "/users/7/delete", nil), &authz.Principal{ID: 1, Role: "admin"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []int64{7}, repo.deleted)
}
