package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/citybreaker/citybreaker-server/internal/ratelimit"
)

// RateLimiter limits requests per key, keyed by client IP for auth endpoints.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// rate: number of requests allowed per interval
// interval: time period for rate (e.g., time.Minute)
// burst: maximum burst size
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// checkAuthRate rejects the request with 429 when the client IP has exceeded
// the credential-guessing budget. A blank IP (direct connection without proxy
// headers in tests) shares one bucket.
func (s *Server) checkAuthRate(xForwardedFor, xRealIP string) error {
	if s.authRateLimiter == nil {
		return nil
	}
	ip := extractIP(xForwardedFor, xRealIP)
	if !s.authRateLimiter.Allow(ip) {
		if s.logger != nil {
			s.logger.Warn("Auth rate limit exceeded", "ip", ip)
		}
		return huma.Error429TooManyRequests("Too many attempts. Please try again later.")
	}
	return nil
}

// extractIP returns the client IP from proxy headers.
// X-Forwarded-For may contain a chain; the first entry is the client.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
