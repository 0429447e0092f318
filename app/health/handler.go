package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mytheresa/go-catalog-analytics/app/api"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type Response struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := Response{Status: "healthy", Database: "up", Timestamp: time.Now().UTC()}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "database ping failed", "error", err)
		response.Status = "unhealthy"
		response.Database = "down"
		status = http.StatusServiceUnavailable
	}

	api.JSONResponse(w, status, response)
}
