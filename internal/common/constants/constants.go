package constants

import "time"

const (
	PasswordMinLength  = 5
	PasswordMaxLength  = 72
	FullNameMinLength  = 3
	FullNameMaxLength  = 100
	TitleMinLength     = 3
	TitleMaxLength     = 200
	TextMinLength      = 3
	CommentMaxLength   = 2000
	JWTSecretMinLength = 32

	LatestTagsPostsLimit = 5
	LatestTagsLimit      = 5

	DefaultMaxRequestSize = 1 << 20
	DefaultMaxUploadSize  = 10 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBConnectMaxAttempts  = 10
	DBConnectRetryDelay   = time.Second
	DBConnectMaxDelay     = 10 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	UploadBreakerThreshold  = 5
	UploadBreakerTimeout    = 30 * time.Second
	UploadBreakerResetAfter = 30 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "4444"
	DefaultRequestTimeout = 5 * time.Second
	DefaultTokenTTL       = 30 * 24 * time.Hour

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28

	TestJWTSecret = "test-secret-key-must-be-at-least-32-bytes-long"
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
