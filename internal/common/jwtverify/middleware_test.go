package jwtverify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	commonhttp "github.com/AlibekovAA/blog-backend/internal/common/http"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
)

type mockVerifier struct {
	verifyFunc func(token string) (string, error)
}

func (m *mockVerifier) Verify(token string) (string, error) {
	return m.verifyFunc(token)
}

func testLogger() *logger.Logger {
	return logger.NewWriter(io.Discard, "test", "ERROR")
}

type recordingHandler struct {
	calls   int
	subject string
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	if id, ok := IdentityFromContext(r.Context()); ok {
		h.subject = id.SubjectID
	}
	w.WriteHeader(http.StatusOK)
}

func assertDenied(t *testing.T, rec *httptest.ResponseRecorder, next *recordingHandler) {
	t.Helper()

	if next.calls != 0 {
		t.Fatalf("downstream handler must not run, ran %d times", next.calls)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var env commonhttp.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Code != "UNAUTHENTICATED" || env.Message != "access denied" {
		t.Errorf("unexpected envelope %+v", env)
	}
	if env.Details != nil {
		t.Errorf("denial must not carry details, got %v", env.Details)
	}
}

func TestGuard_AbsentHeader(t *testing.T) {
	verifier := &mockVerifier{verifyFunc: func(string) (string, error) {
		t.Fatal("verifier must not be called without a token")
		return "", nil
	}}
	next := &recordingHandler{}
	rec := httptest.NewRecorder()

	NewGuard(verifier, "", testLogger()).Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/post", nil))

	assertDenied(t, rec, next)
}

func TestGuard_EmptyBearer(t *testing.T) {
	next := &recordingHandler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/post", nil)
	req.Header.Set("Authorization", "Bearer ")

	NewGuard(&mockVerifier{verifyFunc: func(string) (string, error) { return "u1", nil }}, "", testLogger()).
		Middleware(next).ServeHTTP(rec, req)

	assertDenied(t, rec, next)
}

func TestGuard_VerificationFailuresLookIdentical(t *testing.T) {
	var bodies []string

	for _, failure := range []error{ErrMalformed, ErrInvalidSignature, ErrExpired, errors.New("unexpected")} {
		next := &recordingHandler{}
		verifier := &mockVerifier{verifyFunc: func(string) (string, error) { return "", failure }}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/posts/1", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")

		NewGuard(verifier, "", testLogger()).Middleware(next).ServeHTTP(rec, req)

		bodies = append(bodies, rec.Body.String())
		assertDenied(t, rec, next)
	}

	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("denial bodies differ: %q vs %q", bodies[0], bodies[i])
		}
	}
}

func TestGuard_AdmitsOnceWithIdentity(t *testing.T) {
	c, _ := newTestCodec(t, time.Hour)
	token, err := c.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	testCases := []struct {
		name   string
		header string
		value  string
	}{
		{"bearer with space", "Authorization", "Bearer " + token},
		{"bearer with tab", "Authorization", "Bearer\t" + token},
		{"lowercase bearer", "Authorization", "bearer " + token},
		{"raw token", "Authorization", token},
		{"custom header", "X-Auth-Token", token},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := &recordingHandler{}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set(tc.header, tc.value)

			NewGuard(c, tc.header, testLogger()).Middleware(next).ServeHTTP(rec, req)

			if next.calls != 1 {
				t.Fatalf("expected exactly one downstream call, got %d", next.calls)
			}
			if next.subject != "u1" {
				t.Errorf("expected subject u1, got %q", next.subject)
			}
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestGuard_TamperedTokenDenied(t *testing.T) {
	c, _ := newTestCodec(t, time.Hour)
	token, err := c.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := verifyTampered(c, token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	sig := []byte(token)
	i := len(sig) - 1
	for sig[i] != '.' {
		i--
	}
	if sig[i+1] == 'A' {
		sig[i+1] = 'B'
	} else {
		sig[i+1] = 'A'
	}

	next := &recordingHandler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/comments", nil)
	req.Header.Set("Authorization", "Bearer "+string(sig))

	NewGuard(c, "", testLogger()).Middleware(next).ServeHTTP(rec, req)

	assertDenied(t, rec, next)
}

func TestGuard_ExpiredTokenDenied(t *testing.T) {
	c, clk := newTestCodec(t, time.Hour)
	token, err := c.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	clk.Advance(2 * time.Hour)

	next := &recordingHandler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set("Authorization", token)

	NewGuard(c, "", testLogger()).Middleware(next).ServeHTTP(rec, req)

	assertDenied(t, rec, next)
}

func TestExtractToken(t *testing.T) {
	testCases := map[string]string{
		"":               "",
		"Bearer":         "",
		"Bearer   ":      "",
		"Bearer abc":     "abc",
		"bearer abc":     "abc",
		"Bearerabc":      "Bearerabc",
		"Bearer\tabc":    "abc",
		"Token abc":      "Token abc",
		"  abc  ":        "abc",
		"Bearer abc.d.e": "abc.d.e",
	}

	for in, want := range testCases {
		if got := ExtractToken(in); got != want {
			t.Errorf("ExtractToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIdentityFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Error("expected no identity on a fresh request")
	}
}
