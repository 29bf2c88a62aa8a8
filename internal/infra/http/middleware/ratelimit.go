package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter guarda o bucket e o último acesso (para limpeza)
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientKey identifica o cliente da requisição.
// Prioridade: primeiro IP do X-Forwarded-For (cliente original atrás do proxy),
// depois o host do RemoteAddr.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// RateLimit aplica um token bucket por cliente (golang.org/x/time/rate).
// Quando o bucket esvazia, devolvemos 429 com Retry-After.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
	)

	// Limpeza periódica para o mapa não crescer para sempre
	go func() {
		for range time.Tick(5 * time.Minute) {
			mu.Lock()
			for key, client := range clients {
				if time.Since(client.lastSeen) > 10*time.Minute {
					delete(clients, key)
				}
			}
			mu.Unlock()
		}
	}()

	getLimiter := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		client, ok := clients[key]
		if !ok {
			client = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[key] = client
		}
		client.lastSeen = time.Now()
		return client.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !getLimiter(clientKey(r)).Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
