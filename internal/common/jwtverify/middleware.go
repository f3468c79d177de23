package jwtverify

import (
	"context"
	"net/http"
	"strings"
	"unicode"

	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
	commonhttp "github.com/AlibekovAA/blog-backend/internal/common/http"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/observability/metrics"
)

const DefaultHeader = "Authorization"

type Verifier interface {
	Verify(token string) (string, error)
}

// Identity is the authenticated subject of one request.
type Identity struct {
	SubjectID string
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.SubjectID != ""
}

type Guard struct {
	verifier Verifier
	header   string
	log      *logger.Logger
}

func NewGuard(verifier Verifier, header string, log *logger.Logger) *Guard {
	if strings.TrimSpace(header) == "" {
		header = DefaultHeader
	}
	return &Guard{verifier: verifier, header: header, log: log}
}

// Middleware admits a request only when it carries a valid token; every
// failure produces the same response.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r.Header.Get(g.header))
		if token == "" {
			g.deny(w, r, ReasonAbsent, nil)
			return
		}

		subject, err := g.verifier.Verify(token)
		if err != nil {
			g.deny(w, r, ReasonOf(err), err)
			return
		}

		metrics.AuthGuardAdmitted.Inc()
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), Identity{SubjectID: subject})))
	})
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, reason Reason, err error) {
	fields := logger.Fields{
		"action": "auth_guard_denied",
		"reason": reason.String(),
		"path":   r.URL.Path,
		"method": r.Method,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	g.log.WithFields(r.Context(), fields).Warn("request denied")

	metrics.AuthGuardDenied.WithLabelValues(reason.String()).Inc()

	denied := commonerrors.ErrUnauthenticated
	commonhttp.WriteErrorEnvelope(w, denied.HTTPStatus(), denied.Code(), denied.Message(), nil, commonhttp.TraceIDFromContext(r.Context()))
}

// ExtractToken strips an optional leading Bearer scheme.
func ExtractToken(raw string) string {
	raw = strings.TrimSpace(raw)
	scheme, rest := raw, ""
	if i := strings.IndexFunc(raw, unicode.IsSpace); i >= 0 {
		scheme, rest = raw[:i], raw[i:]
	}
	if strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	return raw
}
