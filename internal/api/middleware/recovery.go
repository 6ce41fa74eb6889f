package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/undercover/internal/api/apierr"
	"github.com/mcoot/undercover/internal/middleware"
)

// Recovery turns a handler panic into a 500 JSON error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), writeInternal)
}

func writeInternal(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
