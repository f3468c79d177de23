package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlibekovAA/blog-backend/internal/auth/service"
	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/blog-backend/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/blog-backend/internal/common/http"
	"github.com/AlibekovAA/blog-backend/internal/common/jwtverify"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[userdomain.ID]userdomain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[userdomain.ID]userdomain.User)}
}

func (m *memoryUserRepo) Create(_ context.Context, user userdomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return userdomain.ErrEmailTaken
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserRepo) FindByEmail(_ context.Context, email string) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return userdomain.User{}, userdomain.ErrUserNotFound
}

func (m *memoryUserRepo) FindByID(_ context.Context, id userdomain.ID) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return userdomain.User{}, userdomain.ErrUserNotFound
}

func (m *memoryUserRepo) FindByIDs(context.Context, []userdomain.ID) (map[userdomain.ID]userdomain.Summary, error) {
	return map[userdomain.ID]userdomain.Summary{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *memoryUserRepo) {
	t.Helper()

	log := logger.NewWriter(io.Discard, "test", "ERROR")
	clk := clock.NewMockClock(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))
	codec, err := jwtverify.NewCodec(constants.TestJWTSecret, time.Hour, clk)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	repo := newMemoryUserRepo()
	svc := service.NewAuthService(repo, commoncrypto.NewBcryptHasher(4), commoncrypto.NewUUIDGenerator(), codec, clk, log)

	r := chi.NewRouter()
	NewHandler(svc, log).Routes(r, jwtverify.NewGuard(codec, "", log).Middleware)
	return r, repo
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginMe(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"secret1","fullName":"Alice"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "assword") {
		t.Fatalf("response must not expose password data: %s", rec.Body.String())
	}

	var registered authResponse
	if err := json.NewDecoder(rec.Body).Decode(&registered); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if registered.Token == "" || registered.ID == "" {
		t.Fatalf("expected token and id, got %+v", registered)
	}

	rec = do(t, h, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	var loggedIn authResponse
	if err := json.NewDecoder(rec.Body).Decode(&loggedIn); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = do(t, h, http.MethodGet, "/auth/me", "", loggedIn.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	var me UserResponse
	if err := json.NewDecoder(rec.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.ID != registered.ID || me.FullName != "Alice" {
		t.Errorf("unexpected profile %+v", me)
	}
}

func TestRegister_Validation(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/auth/register", `{"email":"not-an-email","password":"1","fullName":"Al","avatarUrl":"nope"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var env commonhttp.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	fields, _ := env.Details["fields"].(map[string]any)
	for _, f := range []string{"email", "password", "fullName", "avatarUrl"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected %s in validation details, got %v", f, fields)
		}
	}
}

func TestRegister_MultiBytePasswordOverLimit(t *testing.T) {
	h, _ := newTestRouter(t)

	body := `{"email":"euro@example.com","password":"` + strings.Repeat("€", 30) + `","fullName":"Euro"}`
	rec := do(t, h, http.MethodPost, "/auth/register", body, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var env commonhttp.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %q", env.Code)
	}
	fields, _ := env.Details["fields"].(map[string]any)
	if fields["password"] != "maxbytes=72" {
		t.Errorf("expected maxbytes=72 on password, got %v", fields)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _ := newTestRouter(t)
	body := `{"email":"dup@example.com","password":"secret1","fullName":"Dupe"}`

	if rec := do(t, h, http.MethodPost, "/auth/register", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/auth/register", body, ""); rec.Code != http.StatusConflict {
		t.Fatalf("second register: expected 409, got %d", rec.Code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"secret1","fullName":"Bob"}`, "")

	wrongPassword := do(t, h, http.MethodPost, "/auth/login", `{"email":"bob@example.com","password":"secret2"}`, "")
	unknownEmail := do(t, h, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"secret1"}`, "")

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownEmail} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		var env commonhttp.ErrorEnvelope
		_ = json.NewDecoder(rec.Body).Decode(&env)
		if env.Code != "INVALID_CREDENTIALS" {
			t.Errorf("unexpected code %q", env.Code)
		}
	}
}

func TestMe_RequiresToken(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/auth/me", "", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestMe_DeletedUser(t *testing.T) {
	h, repo := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/auth/register", `{"email":"gone@example.com","password":"secret1","fullName":"Gone"}`, "")
	var registered authResponse
	_ = json.NewDecoder(rec.Body).Decode(&registered)

	repo.mu.Lock()
	delete(repo.users, userdomain.ID(registered.ID))
	repo.mu.Unlock()

	rec = do(t, h, http.MethodGet, "/auth/me", "", registered.Token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
