package middleware

import (
	"context"
	"net/http"

	"github.com/stelform/adminkit/internal/recordloader"
	"github.com/stelform/adminkit/internal/repository"
)

type ctxKey string

const recordLoaderKey ctxKey = "recordLoader"

// DataLoaderMiddleware attaches a per-request record loader to the context
func DataLoaderMiddleware(repo repository.RecordRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := recordloader.NewRecordLoader(repo)

			ctx := context.WithValue(r.Context(), recordLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecordLoaderFromContext retrieves the record loader from context
func RecordLoaderFromContext(ctx context.Context) *recordloader.RecordLoader {
	if l, ok := ctx.Value(recordLoaderKey).(*recordloader.RecordLoader); ok {
		return l
	}
	return nil
}
