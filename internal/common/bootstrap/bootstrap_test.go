package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	"github.com/AlibekovAA/blog-backend/internal/common/config"
	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	commonhttp "github.com/AlibekovAA/blog-backend/internal/common/http"
	"github.com/AlibekovAA/blog-backend/internal/common/jwtverify"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/upload/storage"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestOpenUploads(t *testing.T) {
	ctx := context.Background()
	log := logger.NewWriter(io.Discard, "test", "ERROR")

	store, err := OpenUploads(ctx, config.UploadsConfig{Driver: config.UploadsDisk, Dir: t.TempDir()}, log)
	require.NoError(t, err)
	require.Equal(t, storage.DriverDisk, store.Driver())

	_, err = OpenUploads(ctx, config.UploadsConfig{Driver: "ftp"}, log)
	require.Error(t, err)
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	_, err := OpenStores(context.Background(), config.StorageConfig{Driver: "sqlite"}, logger.NewWriter(io.Discard, "test", "ERROR"))
	require.Error(t, err)
}

func TestStores_CloseRunsInReverse(t *testing.T) {
	var order []string
	s := &Stores{closers: []func(context.Context) error{
		func(context.Context) error { order = append(order, "first"); return nil },
		func(context.Context) error { order = append(order, "second"); return errors.New("boom") },
	}}

	err := s.Close(context.Background())
	require.Error(t, err)
	require.Equal(t, []string{"second", "first"}, order)
}

func newTestApp(t *testing.T, healthy bool) *App {
	t.Helper()

	log := logger.NewWriter(io.Discard, "test", "ERROR")
	codec, err := jwtverify.NewCodec(constants.TestJWTSecret, time.Hour, clock.NewRealClock())
	require.NoError(t, err)

	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	ping := pingerFunc(func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("unreachable")
	})

	cfg := &config.Config{
		HTTP: config.HTTPConfig{RequestTimeout: time.Second, MaxBodyBytes: 1 << 20, AllowedOrigins: []string{"*"}},
		Auth: config.AuthConfig{JWTSecret: constants.TestJWTSecret, TokenTTL: time.Hour, Header: "Authorization"},
	}

	return &App{
		Config:  cfg,
		Log:     log,
		Stores:  &Stores{Pingers: map[string]commonhttp.Pinger{"store": ping}},
		Uploads: disk,
		Codec:   codec,
	}
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHandler_Health(t *testing.T) {
	require.Equal(t, http.StatusOK, serve(newTestApp(t, true).Handler(), http.MethodGet, "/health").Code)
	require.Equal(t, http.StatusServiceUnavailable, serve(newTestApp(t, false).Handler(), http.MethodGet, "/health").Code)
}

func TestHandler_UnknownRoute(t *testing.T) {
	rec := serve(newTestApp(t, true).Handler(), http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, commonhttp.CodeNotFound, body["code"])
	require.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestHandler_GuardedRoutesDenyWithoutToken(t *testing.T) {
	h := newTestApp(t, true).Handler()

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/auth/me"},
		{http.MethodPost, "/post"},
		{http.MethodPost, "/comments"},
		{http.MethodPost, "/upload"},
	} {
		rec := serve(h, route.method, route.path)
		require.Equal(t, http.StatusForbidden, rec.Code, route.path)
	}
}

func TestHandler_Metrics(t *testing.T) {
	rec := serve(newTestApp(t, true).Handler(), http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
