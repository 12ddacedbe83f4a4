//go:build integration

package router

// End-to-end run against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/config"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/infra"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/worker"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("koroshi_test"),
		tcPostgres.WithUsername("koroshi"),
		tcPostgres.WithPassword("koroshi"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                   "test",
		DatabaseURL:           pgURL,
		RedisURL:              rdURL,
		WorkerPoolSize:        1,
		PDFStoragePath:        t.TempDir(),
		PickingMinutesPerStop: 1.5,
		RateLimitPerMinute:    1000,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	deps := Deps{Metrics: metrics.New(), Dispatcher: worker.NewDispatcher(rdb)}
	svcs := NewServices(cfg, db, rdb, deps)
	srv := httptest.NewServer(New(cfg, db, rdb, svcs, deps))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, db: db, rdb: rdb}
}

func TestE2E_WarehouseFlow(t *testing.T) {
	env := setupTestEnv(t)
	w := runWarehouseFlow(t, env.server, env.db)

	// The EAN lookup was cached; a stock change must invalidate it.
	keys, err := env.rdb.Keys(t.Context(), infra.EANCachePrefix+"*").Result()
	require.NoError(t, err)
	assert.Contains(t, keys, infra.EANCachePrefix+"8400000000035")

	callJSON(t, env.server, http.MethodPatch, "/api/v1/ubicaciones/"+w.locAisleA.String()+"/stock",
		map[string]any{"delta": 7, "motivo": "recuento"}, http.StatusOK)
	ean := callJSON(t, env.server, http.MethodGet, "/api/v1/ean/8400000000035", nil, http.StatusOK)
	assert.EqualValues(t, 10, ean["stock_total"])

	health := callJSON(t, env.server, http.MethodGet, "/health", nil, http.StatusOK)
	assert.Equal(t, true, health["ok"])

	// Finish the order over the PDA channel.
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/operators/op001"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Action string         `json:"action"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connected", msg.Action)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"action": "scan_product",
		"data":   map[string]string{"order_id": w.orderID.String(), "ean": "8400000000035"},
	}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "scan_confirmed", msg.Action)
	progress := msg.Data["progreso_orden"].(map[string]any)
	assert.EqualValues(t, 100, progress["progreso_pct"])

	detail := callJSON(t, env.server, http.MethodGet, "/api/v1/orders/"+w.orderID.String(), nil, http.StatusOK)
	assert.EqualValues(t, 2, detail["items_completados"])
}
