package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout ограничивает контекст запроса. Обработчик сам решает, что ответить
// по истечении: создание бронирования отвечает 503 с retryable.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
