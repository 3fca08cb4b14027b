package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/levelforge/server/internal/auth"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	rateLimitExceededJSON = `{"error":"Rate limit exceeded","message":"Too many requests. Please try again later.","retry_after":%d}`
)

// RateLimitMiddleware creates an IP-keyed rate limiting middleware
func RateLimitMiddleware(limit int, window time.Duration) func(http.Handler) http.Handler {
	store := memory.NewStore()
	rate := limiter.Rate{
		Period: window,
		Limit:  int64(limit),
	}

	instance := limiter.New(store, rate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enforceRateLimit(instance, getClientIP(r), next, w, r)
		})
	}
}

// ClientRateLimitMiddleware creates a rate limiting middleware for
// authenticated clients. Uses the client ID from context, falling back to
// the IP address for unauthenticated requests.
func ClientRateLimitMiddleware(limit int, window time.Duration) func(http.Handler) http.Handler {
	store := memory.NewStore()
	rate := limiter.Rate{
		Period: window,
		Limit:  int64(limit),
	}

	instance := limiter.New(store, rate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)
			if clientID, ok := auth.GetClientID(r); ok {
				key = "client:" + clientID
			}
			enforceRateLimit(instance, key, next, w, r)
		})
	}
}

// enforceRateLimit checks the limiter for key and either passes the request
// through or answers 429. Limiter failures let the request through so the
// limiter cannot break the service.
func enforceRateLimit(instance *limiter.Limiter, key string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	context, err := instance.Get(r.Context(), key)
	if err != nil {
		log.Printf("Rate limiter error: %v", err)
		next.ServeHTTP(w, r)
		return
	}

	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(context.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(context.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(context.Reset, 10))

	if context.Reached {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)

		retryAfter := int(time.Until(time.Unix(context.Reset, 0)).Seconds())
		if retryAfter < 0 {
			retryAfter = 0
		}

		if _, err := fmt.Fprintf(w, rateLimitExceededJSON, retryAfter); err != nil {
			log.Printf("Error writing rate limit response: %v", err)
		}
		return
	}

	next.ServeHTTP(w, r)
}

// getClientIP extracts the client IP address from the request
// Handles X-Forwarded-For header for proxied requests
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies/load balancers)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		return forwarded
	}

	// Check X-Real-IP header (alternative proxy header)
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	// Remove port if present (e.g., "127.0.0.1:12345" -> "127.0.0.1")
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}

	return ip
}
