package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data map[string]gateway.CachedResponse
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]gateway.CachedResponse)}
}

func (s *memoryStore) Get(ctx context.Context, key string) (*gateway.CachedResponse, error) {
	resp, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (s *memoryStore) Save(ctx context.Context, key string, response gateway.CachedResponse, ttl time.Duration) error {
	s.data[key] = response
	return nil
}

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order_id":"abc"}`))
	})
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store)(countingHandler(&calls))

	first := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{}"))
	first.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, calls)

	// Segunda chamada com a mesma chave: resposta vem do cache
	second := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{}"))
	second.Header.Set("Idempotency-Key", "key-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"order_id":"abc"}`, rec.Body.String())
	assert.Equal(t, "true", rec.Header().Get("X-Idempotency-Hit"))
	assert.Equal(t, 1, calls)
}

func TestIdempotency_PassesThroughWithoutKey(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store)(countingHandler(&calls))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}
