package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/edusync/edusync-portal/internal/config"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pingTimeout = 2 * time.Second

// SystemHandler reports liveness and dependency health.
type SystemHandler struct {
	rdb       *redis.Client
	pool      *pgxpool.Pool
	baseURL   string
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(rdb *redis.Client, pool *pgxpool.Pool, edusyncBaseURL string, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		rdb:       rdb,
		pool:      pool,
		baseURL:   edusyncBaseURL,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStatus struct {
	Status      string            `json:"status"`
	Uptime      string            `json:"uptime"`
	Checks      map[string]string `json:"checks"`
	LedgerQueue int64             `json:"ledger_queue"`
	Goroutines  int               `json:"goroutines"`
	HeapAlloc   uint64            `json:"heap_alloc"`
	GoVersion   string            `json:"go_version"`
	EduSyncURL  string            `json:"edusync_url"`
}

// Health godoc
// GET /health
// Pings Redis and Postgres; 503 when either is down.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	st := systemStatus{
		Status:     "ok",
		Uptime:     formatDuration(time.Since(h.startTime)),
		Checks:     map[string]string{"redis": "ok", "postgres": "ok"},
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
		EduSyncURL: h.baseURL,
	}

	if err := h.rdb.Ping(ctx).Err(); err != nil {
		st.Status, st.Checks["redis"] = "degraded", err.Error()
	} else if n, err := h.rdb.LLen(ctx, config.WorkerKey.ResultLedgerQueue).Result(); err == nil {
		st.LedgerQueue = n
	}
	if err := h.pool.Ping(ctx); err != nil {
		st.Status, st.Checks["postgres"] = "degraded", err.Error()
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	st.HeapAlloc = ms.HeapAlloc

	status := http.StatusOK
	if st.Status != "ok" {
		h.log.Warn().Interface("checks", st.Checks).Msg("Health check degraded")
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, st)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
