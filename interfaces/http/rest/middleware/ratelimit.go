package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"recipebook/pkg/auth"
	pkgerrors "recipebook/pkg/errors"
)

// RateLimitObserver is told about every rejected request
type RateLimitObserver interface {
	RateLimited()
}

// RateLimit rejects clients that exceed their token bucket
func RateLimit(limiter *auth.TokenBucketLimiter, observer RateLimitObserver, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	rps, burst := limiter.Limit()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Warn("Rate limiter failed", zap.String("clientIP", clientIP), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if observer != nil {
					observer.RateLimited()
				}
				w.Header().Set("Retry-After", "1")
				errHandler.Handle(w, r, pkgerrors.NewRateLimitError(rps, burst))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
