package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	pgx "github.com/jackc/pgx/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AlibekovAA/blog-backend/internal/observability/metrics"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Observe records the duration of a query and, on failure, the error counter.
// A missing row or document is mapped to notFoundErr and not counted as a
// failure.
func Observe(driver, operation, collection string, start time.Time, err error, notFoundErr error) error {
	metrics.DBQueryDurationSeconds.WithLabelValues(driver, operation, collection).Observe(time.Since(start).Seconds())

	if err == nil {
		return nil
	}

	if notFoundErr != nil && (errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments)) {
		return notFoundErr
	}

	metrics.DBQueryErrors.WithLabelValues(driver, operation, collection).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return mongo.IsDuplicateKeyError(err)
}
