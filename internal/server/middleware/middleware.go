// Package middleware provides HTTP middleware for request logging and rate limiting.
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/server/ratelimit"
)

// Logger logs one line per request with its status and duration.
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("server: request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr))
		})
	}
}

// RateLimit rejects requests over the client's quota with 429 and sets the X-RateLimit headers.
func RateLimit(limiter *ratelimit.Limiter, reject func(w http.ResponseWriter, info ratelimit.Info)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, info := limiter.Allow(ClientID(r), r.URL.Path, r.Method)
			setRateLimitHeaders(w, info)
			if !allowed {
				zap.L().Debug("server: rate limit exceeded",
					zap.String("client", ClientID(r)),
					zap.String("path", r.URL.Path),
					zap.Duration("retry_after", info.RetryAfter))
				reject(w, info)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientID extracts the client identifier from the request. RemoteAddr has
// already been rewritten from X-Forwarded-For by chi's RealIP when present.
func ClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds()+0.5)))
	}
}
