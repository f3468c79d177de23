package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/blog-backend/internal/auth/http"
	authservice "github.com/AlibekovAA/blog-backend/internal/auth/service"
	commenthttp "github.com/AlibekovAA/blog-backend/internal/comment/http"
	commentrepo "github.com/AlibekovAA/blog-backend/internal/comment/repository"
	commentservice "github.com/AlibekovAA/blog-backend/internal/comment/service"
	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	"github.com/AlibekovAA/blog-backend/internal/common/config"
	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/blog-backend/internal/common/crypto"
	"github.com/AlibekovAA/blog-backend/internal/common/db"
	commonhttp "github.com/AlibekovAA/blog-backend/internal/common/http"
	"github.com/AlibekovAA/blog-backend/internal/common/jwtverify"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/common/resilience"
	posthttp "github.com/AlibekovAA/blog-backend/internal/post/http"
	postrepo "github.com/AlibekovAA/blog-backend/internal/post/repository"
	postservice "github.com/AlibekovAA/blog-backend/internal/post/service"
	uploadhttp "github.com/AlibekovAA/blog-backend/internal/upload/http"
	uploadservice "github.com/AlibekovAA/blog-backend/internal/upload/service"
	"github.com/AlibekovAA/blog-backend/internal/upload/storage"
	userrepo "github.com/AlibekovAA/blog-backend/internal/user/repository"
)

const (
	metricsPath = "/metrics"
	uploadPath  = "/upload"
)

type Stores struct {
	Users    userrepo.Repository
	Posts    postrepo.Repository
	Comments commentrepo.Repository
	Pingers  map[string]commonhttp.Pinger

	closers []func(ctx context.Context) error
}

// Close releases every backend opened by OpenStores.
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func OpenStores(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*Stores, error) {
	switch cfg.Driver {
	case config.StorageMongo:
		return openMongo(ctx, cfg.MongoURL, log)
	case config.StoragePostgres:
		return openPostgres(ctx, cfg.DatabaseURL, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openMongo(ctx context.Context, uri string, log *logger.Logger) (*Stores, error) {
	m, err := db.NewMongo(ctx, log, uri)
	if err != nil {
		return nil, err
	}
	stores := &Stores{
		Pingers: map[string]commonhttp.Pinger{"mongo": m},
		closers: []func(context.Context) error{m.Close},
	}

	users, err := userrepo.NewMongoRepository(ctx, m.DB)
	if err != nil {
		return nil, closeOnError(ctx, stores, err)
	}
	posts, err := postrepo.NewMongoRepository(ctx, m.DB)
	if err != nil {
		return nil, closeOnError(ctx, stores, err)
	}
	comments, err := commentrepo.NewMongoRepository(ctx, m.DB)
	if err != nil {
		return nil, closeOnError(ctx, stores, err)
	}

	stores.Users = users
	stores.Posts = posts
	stores.Comments = comments
	return stores, nil
}

func openPostgres(ctx context.Context, databaseURL string, log *logger.Logger) (*Stores, error) {
	if err := db.Migrate(ctx, log, databaseURL); err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, log, databaseURL)
	if err != nil {
		return nil, err
	}

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)

	return &Stores{
		Users:    userrepo.NewPgRepository(pool),
		Posts:    postrepo.NewPgRepository(pool),
		Comments: commentrepo.NewPgRepository(pool),
		Pingers:  map[string]commonhttp.Pinger{"postgres": pool},
		closers: []func(context.Context) error{
			func(context.Context) error {
				stopMetrics()
				pool.Close()
				return nil
			},
		},
	}, nil
}

func closeOnError(ctx context.Context, stores *Stores, err error) error {
	if cerr := stores.Close(ctx); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

func OpenUploads(ctx context.Context, cfg config.UploadsConfig, log *logger.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case config.UploadsDisk:
		return storage.NewDisk(cfg.Dir)
	case config.UploadsMinio:
		m, err := storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint: cfg.S3.Endpoint,
			Bucket:   cfg.S3.Bucket,
			User:     cfg.S3.User,
			Password: cfg.S3.Password,
			UseSSL:   cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewGuarded(m, resilience.CircuitBreakerConfig{
			Threshold:  constants.UploadBreakerThreshold,
			Timeout:    constants.UploadBreakerTimeout,
			ResetAfter: constants.UploadBreakerResetAfter,
			Logger:     log,
		}), nil
	default:
		return nil, fmt.Errorf("unknown uploads driver %q", cfg.Driver)
	}
}

// App is the assembled blog service.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Stores  *Stores
	Uploads storage.Storage
	Codec   *jwtverify.Codec
}

func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	codec, err := jwtverify.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock.NewRealClock())
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	stores, err := OpenStores(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	uploads, err := OpenUploads(ctx, cfg.Uploads, log)
	if err != nil {
		return nil, closeOnError(ctx, stores, fmt.Errorf("open uploads: %w", err))
	}
	stores.Pingers["uploads"] = uploads

	return &App{
		Config:  cfg,
		Log:     log,
		Stores:  stores,
		Uploads: uploads,
		Codec:   codec,
	}, nil
}

// Handler builds the full route table wrapped in the shared middleware.
func (a *App) Handler() http.Handler {
	clk := clock.NewRealClock()
	ids := commoncrypto.NewUUIDGenerator()
	guard := jwtverify.NewGuard(a.Codec, a.Config.Auth.Header, a.Log).Middleware

	auth := authservice.NewAuthService(a.Stores.Users, commoncrypto.NewBcryptHasher(0), ids, a.Codec, clk, a.Log)
	posts := postservice.NewPostService(a.Stores.Posts, a.Stores.Users, ids, clk, a.Log)
	comments := commentservice.NewCommentService(a.Stores.Comments, posts, a.Stores.Users, ids, clk, a.Log)
	uploads := uploadservice.NewUploadService(a.Uploads, a.Config.Uploads.MaxBytes, a.Log)

	r := chi.NewRouter()
	r.Handle(metricsPath, promhttp.Handler())
	r.Get("/health", commonhttp.HealthHandler(a.Log, a.Stores.Pingers))

	r.Group(func(r chi.Router) {
		r.Use(commonhttp.WithTimeout(a.Config.HTTP.RequestTimeout))
		authhttp.NewHandler(auth, a.Log).Routes(r, guard)
		posthttp.NewHandler(posts, a.Log).Routes(r, guard)
		commenthttp.NewHandler(comments, a.Log).Routes(r, guard)
	})
	uploadhttp.NewHandler(uploads, a.Log).Routes(r, guard)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "route not found", nil, commonhttp.TraceIDFromContext(r.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, commonhttp.TraceIDFromContext(r.Context()))
	})

	return commonhttp.BuildBaseHandler(a.Log, r, commonhttp.BaseOptions{
		MaxBodyBytes:   a.Config.HTTP.MaxBodyBytes,
		BodyExempt:     []string{uploadPath},
		AllowedOrigins: a.Config.HTTP.AllowedOrigins,
		AuthHeader:     a.Config.Auth.Header,
		MetricsPath:    metricsPath,
	})
}

func (a *App) Close(ctx context.Context) error {
	return a.Stores.Close(ctx)
}
