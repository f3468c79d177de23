package http

import (
	"net/http"

	"github.com/AlibekovAA/blog-backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
)

type BaseOptions struct {
	MaxBodyBytes   int64
	BodyExempt     []string
	AllowedOrigins []string
	AuthHeader     string
	MetricsPath    string
}

// BuildBaseHandler wraps the router with the middleware every request goes
// through, outermost first.
func BuildBaseHandler(log *logger.Logger, handler http.Handler, opts BaseOptions) http.Handler {
	collector := httpmetrics.New(opts.MetricsPath)
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(opts.MaxBodyBytes, opts.BodyExempt...)
	cors := CORSMiddleware(opts.AllowedOrigins, opts.AuthHeader)
	csp := ContentSecurityPolicyMiddleware("")

	return SecurityHeadersMiddleware(csp(TraceIDMiddleware(recovery(cors(maxRequestSize(collector.Wrap(handler)))))))
}
